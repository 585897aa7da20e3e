package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"taskhive/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/balance"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/webhook"
)

// StripeGateway implements Gateway on the Stripe API. The API key is the
// package-level stripe.Key, set once at startup.
type StripeGateway struct {
	webhookSecret string
}

func NewStripeGateway(webhookSecret string) *StripeGateway {
	return &StripeGateway{webhookSecret: webhookSecret}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, req IntentRequest) (*models.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(req.Amount),
		Currency:           stripe.String(req.Currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, wrapStripeErr("create payment intent", err)
	}
	return toIntent(pi), nil
}

func (g *StripeGateway) GetIntent(ctx context.Context, id string) (*models.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := paymentintent.Get(id, params)
	if err != nil {
		return nil, wrapStripeErr("retrieve payment intent", err)
	}
	return toIntent(pi), nil
}

// ParseWebhook verifies the Stripe-Signature header and decodes payment
// intent events. Other event types come back with only Type set.
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*models.WebhookEvent, error) {
	if g.webhookSecret == "" {
		return nil, ErrWebhookDisabled
	}
	// Endpoints pinned to another API version still deliver valid events.
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	switch {
	case isSignatureErr(err):
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrMalformedWebhook, err)
	}

	out := &models.WebhookEvent{Type: string(event.Type)}
	switch out.Type {
	case models.WebhookIntentSucceeded, models.WebhookIntentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("%w: payment intent: %v", ErrMalformedWebhook, err)
		}
		out.IntentID = pi.ID
		out.BookingID = pi.Metadata["bookingId"]
	}
	return out, nil
}

func isSignatureErr(err error) bool {
	return errors.Is(err, webhook.ErrNotSigned) ||
		errors.Is(err, webhook.ErrNoValidSignature) ||
		errors.Is(err, webhook.ErrInvalidHeader) ||
		errors.Is(err, webhook.ErrTooOld)
}

func (g *StripeGateway) Balance(ctx context.Context) (*models.GatewayBalance, error) {
	params := &stripe.BalanceParams{}
	params.Context = ctx

	b, err := balance.Get(params)
	if err != nil {
		return nil, wrapStripeErr("retrieve balance", err)
	}
	return &models.GatewayBalance{
		Available: toAmounts(b.Available),
		Pending:   toAmounts(b.Pending),
	}, nil
}

func toIntent(pi *stripe.PaymentIntent) *models.PaymentIntent {
	return &models.PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
		Metadata:     pi.Metadata,
	}
}

func toAmounts(in []*stripe.Amount) []models.BalanceAmount {
	out := make([]models.BalanceAmount, 0, len(in))
	for _, a := range in {
		out = append(out, models.BalanceAmount{Amount: a.Amount, Currency: string(a.Currency)})
	}
	return out
}

func wrapStripeErr(op string, err error) error {
	var se *stripe.Error
	if errors.As(err, &se) {
		return &GatewayError{Type: string(se.Type), Code: string(se.Code), Message: se.Msg, Err: err}
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
