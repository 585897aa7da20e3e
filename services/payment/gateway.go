package payment

import (
	"context"
	"errors"
	"fmt"

	"taskhive/models"
)

var (
	// ErrInvalidSignature is returned when a webhook payload fails verification.
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrMalformedWebhook is returned for a correctly signed payload that cannot be decoded.
	ErrMalformedWebhook = errors.New("malformed webhook payload")
	// ErrWebhookDisabled is returned when no webhook secret is configured.
	ErrWebhookDisabled = errors.New("webhook secret not configured")
)

// IntentRequest describes a payment intent to create, amount in minor units.
type IntentRequest struct {
	Amount   int64
	Currency string
	Metadata map[string]string
}

// Gateway is the payment provider the bridge talks to.
type Gateway interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*models.PaymentIntent, error)
	GetIntent(ctx context.Context, id string) (*models.PaymentIntent, error)
	ParseWebhook(payload []byte, signature string) (*models.WebhookEvent, error)
	Balance(ctx context.Context) (*models.GatewayBalance, error)
}

// GatewayError carries the provider's classification of a failed call.
type GatewayError struct {
	Type    string
	Code    string
	Message string
	Err     error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway error (%s/%s): %s", e.Type, e.Code, e.Message)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
