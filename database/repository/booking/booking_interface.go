package bookingRepo

import (
	"context"
	"time"

	"taskhive/models"
)

// Participant selects which side of a booking a listing is for.
type Participant string

const (
	AsCustomer Participant = "customerId"
	AsProvider Participant = "providerId"
)

// BookingRepository defines persistence operations for bookings. Bookings are
// never deleted.
type BookingRepository interface {
	Create(ctx context.Context, b *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	GetWithService(ctx context.Context, id string) (*models.BookingWithService, error)

	// UpdateStatus and UpdatePaymentStatus only apply when the stored value
	// still equals from; otherwise they return repository.ErrStale.
	UpdateStatus(ctx context.Context, id string, from, to models.BookingStatus) (*models.Booking, error)
	UpdatePaymentStatus(ctx context.Context, id string, from, to models.PaymentStatus) (*models.Booking, error)
	SetPaymentIntent(ctx context.Context, id, intentID string, amount int64) error

	ListByParticipant(ctx context.Context, who Participant, userID string) ([]models.BookingWithService, error)
	ListCreatedBetween(ctx context.Context, start, end time.Time) ([]models.BookingWithService, error)
	TopServicesByRevenue(ctx context.Context, limit int) ([]models.TopService, error)
}
