package payment

import (
	"context"
	"errors"
	"math"

	"taskhive/database/repository"
	bookingRepo "taskhive/database/repository/booking"
	serviceRepo "taskhive/database/repository/service"
	"taskhive/models"
	"taskhive/services/notification"
	"taskhive/utils"

	"go.uber.org/zap"
)

const failedPaymentMessage = "Payment failed. Please try again."

// DefaultPaymentService is the production PaymentService.
type DefaultPaymentService struct {
	Bookings  bookingRepo.BookingRepository
	Services  serviceRepo.ServiceRepository
	Gateway   Gateway
	Publisher notification.Publisher
	Currency  string
	Logger    *zap.Logger
}

// CreateIntent opens a card payment intent for the booking's current price
// and records its id and amount on the booking.
func (s *DefaultPaymentService) CreateIntent(ctx context.Context, actor models.Actor, bookingID string) (*models.IntentResponse, error) {
	b, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && actor.ID != b.CustomerID {
		return nil, utils.Forbidden("only the booking's customer can pay for it")
	}
	if b.PaymentStatus == models.PaymentCompleted || b.PaymentStatus == models.PaymentRefunded {
		return nil, utils.InvalidState("booking has already been paid")
	}
	svc, err := s.loadService(ctx, b.ServiceID)
	if err != nil {
		return nil, err
	}
	if svc.Price <= 0 {
		return nil, utils.InvalidState("service price is not set").
			WithDetails(map[string]any{"serviceId": svc.ID})
	}

	amount := toMinorUnits(svc.Price)
	intent, err := s.Gateway.CreateIntent(ctx, IntentRequest{
		Amount:   amount,
		Currency: s.currency(),
		Metadata: map[string]string{"bookingId": b.ID, "serviceId": svc.ID},
	})
	if err != nil {
		return nil, upstream("failed to create payment intent", err)
	}
	if err := s.Bookings.SetPaymentIntent(ctx, b.ID, intent.ID, amount); err != nil {
		return nil, utils.Internal("failed to record payment intent", err)
	}

	s.Logger.Info("payment intent created",
		zap.String("bookingId", b.ID),
		zap.String("intentId", intent.ID),
		zap.Int64("amount", intent.Amount))
	return &models.IntentResponse{ClientSecret: intent.ClientSecret}, nil
}

// ConfirmSuccess marks the booking paid once the gateway confirms the
// recorded intent. Confirming an already completed payment is a no-op.
func (s *DefaultPaymentService) ConfirmSuccess(ctx context.Context, actor models.Actor, bookingID string) (*models.Booking, error) {
	b, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && actor.ID != b.CustomerID {
		return nil, utils.Forbidden("only the booking's customer can confirm its payment")
	}
	return s.confirmSuccess(ctx, b)
}

// ConfirmFailure records a failed payment attempt and tells the customer.
func (s *DefaultPaymentService) ConfirmFailure(ctx context.Context, actor models.Actor, bookingID string) (*models.Booking, error) {
	b, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && actor.ID != b.CustomerID {
		return nil, utils.Forbidden("only the booking's customer can report its payment")
	}
	return s.confirmFailure(ctx, b)
}

// History lists the bookings a user paid for or was paid for. Callers may
// only read their own history unless they are admins.
func (s *DefaultPaymentService) History(ctx context.Context, actor models.Actor, userID string, role models.Role) ([]models.BookingWithService, error) {
	if userID == "" {
		userID = actor.ID
	}
	if !actor.IsAdmin() && userID != actor.ID {
		return nil, utils.Forbidden("cannot read another user's payment history")
	}
	who := bookingRepo.AsCustomer
	if role == models.RoleProvider {
		who = bookingRepo.AsProvider
	}
	history, err := s.Bookings.ListByParticipant(ctx, who, userID)
	if err != nil {
		return nil, utils.Internal("failed to load payment history", err)
	}
	return history, nil
}

// HandleWebhook applies a verified gateway push. Events for unknown bookings
// or foreign intents are acknowledged and ignored.
func (s *DefaultPaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	ev, err := s.Gateway.ParseWebhook(payload, signature)
	switch {
	case errors.Is(err, ErrWebhookDisabled):
		return utils.Forbidden("webhooks are not enabled")
	case errors.Is(err, ErrInvalidSignature):
		s.Logger.Warn("webhook signature rejected", zap.Error(err))
		return utils.Validation("invalid webhook signature", nil)
	case err != nil:
		s.Logger.Warn("webhook payload rejected", zap.Error(err))
		return utils.Validation("invalid webhook payload", nil)
	}
	if ev.Type != models.WebhookIntentSucceeded && ev.Type != models.WebhookIntentFailed {
		s.Logger.Debug("ignoring webhook event", zap.String("type", ev.Type))
		return nil
	}

	log := s.Logger.With(zap.String("type", ev.Type), zap.String("intentId", ev.IntentID), zap.String("bookingId", ev.BookingID))
	if ev.BookingID == "" {
		log.Warn("webhook intent carries no booking")
		return nil
	}
	b, err := s.Bookings.GetByID(ctx, ev.BookingID)
	if errors.Is(err, repository.ErrNotFound) {
		log.Warn("webhook for unknown booking")
		return nil
	}
	if err != nil {
		return utils.Internal("failed to load booking", err)
	}
	if b.PaymentIntentID != ev.IntentID {
		log.Warn("webhook intent does not match the booking's intent", zap.String("recorded", b.PaymentIntentID))
		return nil
	}

	if ev.Type == models.WebhookIntentSucceeded {
		_, err = s.confirmSuccess(ctx, b)
	} else {
		_, err = s.confirmFailure(ctx, b)
	}
	if utils.IsCode(err, utils.CodeInvalidState) {
		log.Info("webhook did not change the booking", zap.Error(err))
		return nil
	}
	return err
}

// TestConnection checks the gateway credentials by reading the balance.
func (s *DefaultPaymentService) TestConnection(ctx context.Context) (*models.GatewayBalance, error) {
	bal, err := s.Gateway.Balance(ctx)
	if err != nil {
		return nil, upstream("payment gateway is unreachable", err)
	}
	return bal, nil
}

func (s *DefaultPaymentService) confirmSuccess(ctx context.Context, b *models.Booking) (*models.Booking, error) {
	if b.PaymentStatus == models.PaymentCompleted {
		return b, nil
	}
	if !b.PaymentStatus.CanTransitionTo(models.PaymentCompleted) {
		return nil, utils.InvalidState("payment can no longer be completed").
			WithDetails(map[string]any{"paymentStatus": b.PaymentStatus})
	}
	if b.PaymentIntentID == "" {
		return nil, utils.InvalidState("no payment intent has been created for this booking")
	}
	intent, err := s.Gateway.GetIntent(ctx, b.PaymentIntentID)
	if err != nil {
		return nil, upstream("failed to verify payment", err)
	}
	if err := verifyIntent(intent, b); err != nil {
		s.Logger.Warn("payment verification failed",
			zap.String("bookingId", b.ID),
			zap.String("intentId", intent.ID),
			zap.String("intentStatus", intent.Status))
		return nil, err
	}

	updated, err := s.Bookings.UpdatePaymentStatus(ctx, b.ID, b.PaymentStatus, models.PaymentCompleted)
	if errors.Is(err, repository.ErrStale) {
		// A concurrent confirmation may have won; that is still a success.
		current, loadErr := s.loadBooking(ctx, b.ID)
		if loadErr == nil && current.PaymentStatus == models.PaymentCompleted {
			return current, nil
		}
		return nil, utils.InvalidState("booking was modified concurrently, reload and retry")
	}
	if err != nil {
		return nil, utils.Internal("failed to update payment status", err)
	}

	paid := float64(intent.Amount) / 100
	s.Logger.Info("payment completed", zap.String("bookingId", b.ID), zap.Float64("amount", paid))
	s.emit(ctx, models.ProviderRoom(updated.ProviderID), models.EventPaymentReceived,
		models.PaymentReceivedPayload{BookingID: updated.ID, Amount: paid})
	return updated, nil
}

func (s *DefaultPaymentService) confirmFailure(ctx context.Context, b *models.Booking) (*models.Booking, error) {
	if b.PaymentStatus == models.PaymentFailed {
		return b, nil
	}
	if !b.PaymentStatus.CanTransitionTo(models.PaymentFailed) {
		return nil, utils.InvalidState("payment can no longer fail").
			WithDetails(map[string]any{"paymentStatus": b.PaymentStatus})
	}
	updated, err := s.Bookings.UpdatePaymentStatus(ctx, b.ID, b.PaymentStatus, models.PaymentFailed)
	if errors.Is(err, repository.ErrStale) {
		return nil, utils.InvalidState("booking was modified concurrently, reload and retry")
	}
	if err != nil {
		return nil, utils.Internal("failed to update payment status", err)
	}

	s.Logger.Info("payment failed", zap.String("bookingId", b.ID))
	s.emit(ctx, models.CustomerRoom(updated.CustomerID), models.EventPaymentFailed,
		models.PaymentFailedPayload{BookingID: updated.ID, Message: failedPaymentMessage})
	return updated, nil
}

// verifyIntent checks that intent paid for b the amount recorded when the
// intent was created. Later price edits do not affect it.
func verifyIntent(intent *models.PaymentIntent, b *models.Booking) error {
	details := map[string]any{"intentId": intent.ID}
	switch {
	case intent.Status != models.IntentSucceeded:
		details["status"] = intent.Status
		return utils.InvalidState("payment has not succeeded").WithDetails(details)
	case intent.Metadata["bookingId"] != b.ID:
		return utils.InvalidState("payment intent belongs to another booking").WithDetails(details)
	case intent.Amount != b.PaymentAmount:
		details["amount"] = intent.Amount
		details["expected"] = b.PaymentAmount
		return utils.InvalidState("payment amount does not match the recorded charge").WithDetails(details)
	}
	return nil
}

func (s *DefaultPaymentService) loadBooking(ctx context.Context, id string) (*models.Booking, error) {
	b, err := s.Bookings.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NotFound("booking")
	}
	if err != nil {
		return nil, utils.Internal("failed to load booking", err)
	}
	return b, nil
}

func (s *DefaultPaymentService) loadService(ctx context.Context, id string) (*models.Service, error) {
	svc, err := s.Services.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NotFound("service")
	}
	if err != nil {
		return nil, utils.Internal("failed to load service", err)
	}
	return svc, nil
}

func (s *DefaultPaymentService) currency() string {
	if s.Currency == "" {
		return "usd"
	}
	return s.Currency
}

func (s *DefaultPaymentService) emit(ctx context.Context, room, event string, payload any) {
	if err := s.Publisher.Emit(ctx, room, event, payload); err != nil {
		s.Logger.Warn("failed to emit event", zap.String("event", event), zap.String("room", room), zap.Error(err))
	}
}

func toMinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}

// upstream wraps a gateway failure, exposing the gateway's classification.
func upstream(message string, err error) error {
	appErr := utils.Upstream(message, err)
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		appErr.WithDetails(map[string]any{"type": gwErr.Type, "code": gwErr.Code, "message": gwErr.Message})
	}
	return appErr
}
