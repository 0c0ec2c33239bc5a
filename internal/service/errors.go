package service

import "errors"

var (
	ErrNotInCart      = errors.New("cannot update quantity of an item not in cart yet")
	ErrEmptyCart      = errors.New("cart is empty, nothing to checkout")
	ErrProfileMissing = errors.New("no shipping profile exists for user")
)
