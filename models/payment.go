package models

// PaymentIntent is the gateway-neutral view of a payment intent.
type PaymentIntent struct {
	ID           string            `json:"id"`
	ClientSecret string            `json:"clientSecret"`
	Amount       int64             `json:"amount"`
	Currency     string            `json:"currency"`
	Status       string            `json:"status"`
	Metadata     map[string]string `json:"metadata"`
}

// Intent statuses the payment bridge cares about.
const (
	IntentSucceeded = "succeeded"
)

type IntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

// GatewayBalance is returned by the connectivity check.
type GatewayBalance struct {
	Available []BalanceAmount `json:"available"`
	Pending   []BalanceAmount `json:"pending"`
}

type BalanceAmount struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// WebhookEvent is a verified gateway push reduced to what the bridge acts on.
type WebhookEvent struct {
	Type      string
	IntentID  string
	BookingID string
}

const (
	WebhookIntentSucceeded = "payment_intent.succeeded"
	WebhookIntentFailed    = "payment_intent.payment_failed"
)
