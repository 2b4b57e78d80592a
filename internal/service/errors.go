package service

import (
	"errors"

	"github.com/ucbazaar/shop-backend/internal/repository"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrConflict           = errors.New("concurrent status change")
	ErrProductUnavailable = errors.New("product unavailable")
	ErrEmptyCart          = errors.New("empty cart")

	ErrInsufficientStock = repository.ErrInsufficientStock
)
