package payments

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when no payment provider is configured.
var ErrUnavailable = errors.New("online payments are not configured")

// Verifier confirms with the payment provider that a payment really happened.
type Verifier interface {
	// VerifyPayment reports whether paymentID is a captured payment of exactly
	// expectedAmount (in rupees).
	VerifyPayment(ctx context.Context, paymentID string, expectedAmount int64) (bool, error)
}

// Disabled rejects every verification with ErrUnavailable.
type Disabled struct{}

// VerifyPayment always fails.
func (Disabled) VerifyPayment(context.Context, string, int64) (bool, error) {
	return false, ErrUnavailable
}
