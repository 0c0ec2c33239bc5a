package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	Requests         *prometheus.CounterVec
	LatencyMS        *prometheus.HistogramVec
	OrdersPlaced     prometheus.Counter
	CheckoutFailures *prometheus.CounterVec

	registry *prometheus.Registry
}

func New() *Metrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "boutique",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"route", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "boutique",
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"route"})
	ordersPlaced := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "boutique",
		Name:      "orders_placed_total",
		Help:      "Total number of successfully committed checkouts.",
	})
	checkoutFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "boutique",
		Name:      "checkout_failures_total",
		Help:      "Checkout attempts rejected or failed, by reason.",
	}, []string{"reason"})

	registry := prometheus.NewRegistry()
	registry.MustRegister(requests, latency, ordersPlaced, checkoutFailures)

	return &Metrics{
		Requests:         requests,
		LatencyMS:        latency,
		OrdersPlaced:     ordersPlaced,
		CheckoutFailures: checkoutFailures,
		registry:         registry,
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
