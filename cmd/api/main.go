package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/jasminetntu/bunny-boutique/internal/cache"
	h "github.com/jasminetntu/bunny-boutique/internal/http"
	"github.com/jasminetntu/bunny-boutique/internal/metrics"
	"github.com/jasminetntu/bunny-boutique/internal/publisher"
	"github.com/jasminetntu/bunny-boutique/internal/repository"
	"github.com/jasminetntu/bunny-boutique/internal/service"
)

type Config struct {
	HTTPPort        string
	DBHost          string
	DBPort          int
	DBUser          string
	DBPassword      string
	DBName          string
	MigrationsPath  string
	RedisAddr       string
	KafkaBrokers    []string
	ShippingRate    float64
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		DBHost:          getEnv("DB_HOST", "localhost"),
		DBPort:          getEnvInt("DB_PORT", 5432),
		DBUser:          getEnv("DB_USER", "postgres"),
		DBPassword:      getEnv("DB_PASSWORD", "postgres"),
		DBName:          getEnv("DB_NAME", "boutique"),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "./migrations"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		KafkaBrokers:    splitBrokers(getEnv("KAFKA_BROKERS", "")),
		ShippingRate:    getEnvFloat("SHIPPING_FLAT_RATE", 4.99),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func splitBrokers(csv string) []string {
	var brokers []string
	for _, b := range strings.Split(csv, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func main() {
	cfg := loadConfig()

	creds := &repository.Credentials{
		Host:              cfg.DBHost,
		Port:              cfg.DBPort,
		User:              cfg.DBUser,
		Password:          cfg.DBPassword,
		DBName:            cfg.DBName,
		MigrationsDirPath: cfg.MigrationsPath,
	}

	repo, err := repository.NewRepository(creds)
	if err != nil {
		log.Fatalf("failed to open repository: %v", err)
	}
	defer repo.Close()

	if err := repo.RunMigrations(creds); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	var cartCache cache.CartCache = cache.Noop{}
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		cartCache = cache.NewBreakerCache(cache.NewRedisCache(client))
		log.Printf("cart cache enabled at %s", cfg.RedisAddr)
	}

	m := metrics.New()
	locks := service.NewUserLocks()
	cartService := service.NewCartService(repo, repo, cartCache, locks)
	checkoutService := service.NewCheckoutService(repo, repo, repo, cartCache, locks, cfg.ShippingRate, m)

	cartHandler := h.NewCartHandler(cartService)
	ordersHandler := h.NewOrdersHandler(checkoutService, repo)
	productHandler := h.NewProductHandler(repo)
	categoryHandler := h.NewCategoryHandler(repo, repo)
	profileHandler := h.NewProfileHandler(repo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if len(cfg.KafkaBrokers) > 0 {
		poller := publisher.NewOutboxPoller(repo, cfg.KafkaBrokers...)
		go poller.Run(ctx)
		log.Printf("outbox poller publishing to %v", cfg.KafkaBrokers)
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(h.MetricsMiddleware(m))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())

	// Catalog browsing is open; everything else needs a principal.
	r.Group(func(r chi.Router) {
		r.Get("/products", productHandler.Search)
		r.Get("/products/featured", productHandler.ListFeatured)
		r.Get("/products/{productID}", productHandler.GetProduct)
		r.Get("/categories", categoryHandler.ListCategories)
		r.Get("/categories/{categoryID}", categoryHandler.GetCategory)
		r.Get("/categories/{categoryID}/products", categoryHandler.ListProductsInCategory)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.HeaderAuthMiddleware)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/products/{productID}", cartHandler.AddItem)
			r.Put("/products/{productID}", cartHandler.UpdateQuantity)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", ordersHandler.CreateOrder)
			r.Get("/", ordersHandler.ListOrders)
			r.Get("/{orderID}", ordersHandler.GetOrder)
		})

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", profileHandler.GetProfile)
			r.Post("/", profileHandler.CreateProfile)
			r.Put("/", profileHandler.UpdateProfile)
		})

		r.Post("/products", productHandler.CreateProduct)
		r.Put("/products/{productID}", productHandler.UpdateProduct)
		r.Delete("/products/{productID}", productHandler.DeleteProduct)
		r.Post("/categories", categoryHandler.CreateCategory)
		r.Put("/categories/{categoryID}", categoryHandler.UpdateCategory)
		r.Delete("/categories/{categoryID}", categoryHandler.DeleteCategory)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("boutique API starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}
