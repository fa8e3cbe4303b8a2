package service

import (
	"errors"
	"fmt"
)

// Workflow errors surfaced to the HTTP layer. Storage-level detail stays
// wrapped underneath and is only logged.
var (
	ErrEmptyCart              = errors.New("cart is empty")
	ErrMissingShippingAddress = errors.New("shipping address is required")
	ErrInvalidQuantity        = errors.New("quantity must be positive")
	ErrInvalidActivityType    = errors.New("invalid activity type")
	ErrInvalidCredentials     = errors.New("invalid credentials")
)

// InsufficientInventoryError names the product that blocked a cart or order
// operation.
type InsufficientInventoryError struct {
	ProductName string
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient inventory for %s", e.ProductName)
}
