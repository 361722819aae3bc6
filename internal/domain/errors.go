package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for simple conditions without extra context.
var (
	ErrTransferNotFound = errors.New("transfer not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrBranchNotFound   = errors.New("branch not found")
	ErrUserNotFound     = errors.New("user not found")
)

// ValidationError is returned when request input violates a domain rule.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// InsufficientStockError is returned when a transfer requests more stock
// than the source branch holds.
type InsufficientStockError struct {
	ProductID string
	BranchID  string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %q at branch %q: have %d, need %d",
		e.ProductID, e.BranchID, e.Available, e.Requested)
}

// TransitionError is returned when a state transition is not allowed.
type TransitionError struct {
	Event   Event
	Current Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("event %q is not valid from state %q", e.Event, e.Current)
}

// SKUConflictError is returned when a product SKU is already in use.
type SKUConflictError struct {
	SKU string
}

func (e *SKUConflictError) Error() string {
	return fmt.Sprintf("sku %q is already in use", e.SKU)
}

// CodeConflictError is returned when a branch code is already in use.
type CodeConflictError struct {
	Code string
}

func (e *CodeConflictError) Error() string {
	return fmt.Sprintf("branch code %q is already in use", e.Code)
}
