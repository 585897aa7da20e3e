package models

import "encoding/json"

// Realtime event names.
const (
	EventBookingReceived = "bookingReceived"
	EventBookingUpdated  = "bookingUpdated"
	EventPaymentReceived = "paymentReceived"
	EventPaymentFailed   = "paymentFailed"
)

// ProviderRoom is the room every socket of a provider joins.
func ProviderRoom(providerID string) string { return "provider-" + providerID }

// CustomerRoom is the room every socket of a customer joins.
func CustomerRoom(customerID string) string { return "customer-" + customerID }

// RoomFor returns the caller's own room.
func RoomFor(actor Actor) string {
	if actor.Role == RoleProvider {
		return ProviderRoom(actor.ID)
	}
	return CustomerRoom(actor.ID)
}

// Envelope is the wire frame for realtime events, both on sockets and on the
// cross-instance channel.
type Envelope struct {
	Event string          `json:"event"`
	Room  string          `json:"room"`
	Data  json.RawMessage `json:"data"`
}

type PaymentReceivedPayload struct {
	BookingID string  `json:"bookingId"`
	Amount    float64 `json:"amount"`
}

type PaymentFailedPayload struct {
	BookingID string `json:"bookingId"`
	Message   string `json:"message"`
}
