package payment

import (
	"context"

	"taskhive/models"
)

// PaymentService bridges bookings and the payment gateway.
type PaymentService interface {
	CreateIntent(ctx context.Context, actor models.Actor, bookingID string) (*models.IntentResponse, error)
	ConfirmSuccess(ctx context.Context, actor models.Actor, bookingID string) (*models.Booking, error)
	ConfirmFailure(ctx context.Context, actor models.Actor, bookingID string) (*models.Booking, error)
	History(ctx context.Context, actor models.Actor, userID string, role models.Role) ([]models.BookingWithService, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
	TestConnection(ctx context.Context) (*models.GatewayBalance, error)
}
