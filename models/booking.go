package models

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingCompleted, BookingCancelled},
}

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:   {PaymentCompleted, PaymentFailed},
	PaymentFailed:    {PaymentPending, PaymentCompleted},
	PaymentCompleted: {PaymentRefunded},
}

// Valid reports whether s is a known booking status.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether a booking may move from s to next.
// Completed and cancelled are terminal.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Valid reports whether s is a known payment status.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// CanTransitionTo reports whether a payment may move from s to next.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Booking is a customer's reservation of a service.
type Booking struct {
	ID              string        `json:"id" bson:"id"`
	ServiceID       string        `json:"serviceId" bson:"serviceId"`
	CustomerID      string        `json:"customerId" bson:"customerId"`
	ProviderID      string        `json:"providerId" bson:"providerId"`
	Date            time.Time     `json:"date" bson:"date"`
	Time            string        `json:"time" bson:"time"`
	Address         string        `json:"address" bson:"address"`
	Notes           string        `json:"notes,omitempty" bson:"notes,omitempty"`
	Status          BookingStatus `json:"status" bson:"status"`
	PaymentStatus   PaymentStatus `json:"paymentStatus" bson:"paymentStatus"`
	PaymentIntentID string        `json:"paymentIntentId,omitempty" bson:"paymentIntentId,omitempty"`
	// PaymentAmount is what the recorded intent charges, in minor units.
	PaymentAmount   int64         `json:"paymentAmount,omitempty" bson:"paymentAmount,omitempty"`
	CreatedAt       time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt" bson:"updatedAt"`
}

// BookingWithService is a booking joined with the service it reserves.
type BookingWithService struct {
	Booking `bson:",inline"`
	Service *Service `json:"service" bson:"service,omitempty"`
}

// CreateBookingRequest is the client payload for a new booking.
type CreateBookingRequest struct {
	ServiceID  string    `json:"serviceId" validate:"required"`
	ProviderID string    `json:"providerId,omitempty"`
	Date       time.Time `json:"date" validate:"required"`
	Time       string    `json:"time" validate:"required"`
	Address    string    `json:"address" validate:"required"`
	Notes      string    `json:"notes,omitempty" validate:"max=1000"`
}
