package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrForbidden              = errors.New("forbidden")
	ErrNotFound               = errors.New("not found")
	ErrConflict               = errors.New("conflict")
	ErrInvalidTransition      = errors.New("invalid order status transition")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrShopClosed             = errors.New("shop is closed")
	ErrPaymentNotVerified     = errors.New("payment could not be verified")
	ErrPaymentUnavailable     = errors.New("online payments are unavailable")
)

// ValidationError carries field-level problems with caller input.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ShopClosedError is ErrShopClosed with the message the owner configured.
type ShopClosedError struct {
	Message string
}

func (e *ShopClosedError) Error() string { return ErrShopClosed.Error() + ": " + e.Message }

// Unwrap lets errors.Is match ErrShopClosed.
func (e *ShopClosedError) Unwrap() error { return ErrShopClosed }
