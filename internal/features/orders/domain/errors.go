package domain

import "errors"

var (
	// ErrOrderNotFound is returned when the referenced order id is absent.
	ErrOrderNotFound = errors.New("order not found")
	// ErrValidation is returned when input is rejected at the boundary.
	ErrValidation = errors.New("validation error")
	// ErrOrderTerminal is returned when a write is refused because the order is already Delivered or Cancelled.
	ErrOrderTerminal = errors.New("order is in a terminal status")
	// ErrPersistence is returned when the order collection could not be written to the cache.
	ErrPersistence = errors.New("persistence error")
)
