package booking

import (
	"context"

	"taskhive/models"
)

// BookingService coordinates the booking lifecycle.
type BookingService interface {
	Create(ctx context.Context, actor models.Actor, req models.CreateBookingRequest) (*models.Booking, error)
	UpdateStatus(ctx context.Context, actor models.Actor, bookingID string, status models.BookingStatus) (*models.Booking, error)
	UpdatePaymentStatus(ctx context.Context, actor models.Actor, bookingID string, status models.PaymentStatus) (*models.Booking, error)
	Get(ctx context.Context, actor models.Actor, bookingID string) (*models.BookingWithService, error)
	List(ctx context.Context, actor models.Actor) ([]models.BookingWithService, error)
}
