package payments

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"canedrop/internal/logger"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	razorpayStatusCaptured = "captured"
	paisePerRupee          = 100
)

// razorpayPayment is the subset of GET /v1/payments/{id} we read.
type razorpayPayment struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"` // paise
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

type razorpayError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// RazorpayVerifier checks payments against the Razorpay REST API.
type RazorpayVerifier struct {
	client *resty.Client
}

// NewRazorpayVerifier creates a verifier authenticated with the key pair.
func NewRazorpayVerifier(baseURL, keyID, keySecret string) *RazorpayVerifier {
	client := resty.New().
		SetBaseURL(baseURL).
		SetBasicAuth(keyID, keySecret).
		SetTimeout(15 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})
	return &RazorpayVerifier{client: client}
}

// VerifyPayment fetches the payment and compares its status and amount.
func (v *RazorpayVerifier) VerifyPayment(ctx context.Context, paymentID string, expectedAmount int64) (bool, error) {
	log := logger.FromCtx(ctx).With(zap.String("payment_id", paymentID), zap.Int64("expected_amount", expectedAmount))

	if paymentID == "" {
		return false, nil
	}

	var payment razorpayPayment
	var apiErr razorpayError
	resp, err := v.client.R().
		SetContext(ctx).
		SetResult(&payment).
		SetError(&apiErr).
		Get("/v1/payments/" + url.PathEscape(paymentID))
	if err != nil {
		log.Error("razorpay request failed", zap.Error(err))
		return false, fmt.Errorf("failed to fetch payment %s: %w", paymentID, err)
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound || resp.StatusCode() == http.StatusBadRequest:
		log.Warn("razorpay does not know the payment", zap.String("code", apiErr.Error.Code))
		return false, nil
	case resp.IsError():
		log.Error("razorpay returned an error",
			zap.Int("status", resp.StatusCode()),
			zap.String("description", apiErr.Error.Description))
		return false, fmt.Errorf("razorpay returned %d for payment %s", resp.StatusCode(), paymentID)
	}

	if payment.Status != razorpayStatusCaptured {
		log.Warn("payment not captured", zap.String("status", payment.Status))
		return false, nil
	}
	if payment.Amount != expectedAmount*paisePerRupee {
		log.Warn("payment amount mismatch", zap.Int64("paid_paise", payment.Amount))
		return false, nil
	}
	return true, nil
}
