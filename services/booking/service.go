package booking

import (
	"context"
	"errors"
	"fmt"

	"taskhive/database/repository"
	bookingRepo "taskhive/database/repository/booking"
	serviceRepo "taskhive/database/repository/service"
	"taskhive/models"
	"taskhive/services/notification"
	"taskhive/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultBookingService is the production BookingService.
type DefaultBookingService struct {
	Repo      bookingRepo.BookingRepository
	Services  serviceRepo.ServiceRepository
	Publisher notification.Publisher
	Logger    *zap.Logger
}

// Create books a service for the calling customer. The provider always comes
// from the service; a disagreeing providerId in the request is rejected.
func (s *DefaultBookingService) Create(ctx context.Context, actor models.Actor, req models.CreateBookingRequest) (*models.Booking, error) {
	if actor.Role != models.RoleCustomer {
		return nil, utils.Forbidden("only customers can create bookings")
	}
	if err := utils.ValidateStruct(&req); err != nil {
		return nil, err
	}

	svc, err := s.Services.GetByID(ctx, req.ServiceID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.Validation("service does not exist", map[string]any{"serviceId": req.ServiceID})
	}
	if err != nil {
		return nil, utils.Internal("failed to load service", err)
	}
	if svc.Status != models.ServiceActive {
		return nil, utils.Validation("service is not accepting bookings", map[string]any{"status": svc.Status})
	}
	if req.ProviderID != "" && req.ProviderID != svc.ProviderID {
		return nil, utils.Validation("providerId does not match the service provider", map[string]any{"providerId": req.ProviderID})
	}

	b := &models.Booking{
		ID:            uuid.New().String(),
		ServiceID:     svc.ID,
		CustomerID:    actor.ID,
		ProviderID:    svc.ProviderID,
		Date:          req.Date,
		Time:          req.Time,
		Address:       req.Address,
		Notes:         req.Notes,
		Status:        models.BookingPending,
		PaymentStatus: models.PaymentPending,
	}
	if err := s.Repo.Create(ctx, b); err != nil {
		return nil, utils.Internal("failed to create booking", err)
	}

	s.Logger.Info("booking created",
		zap.String("bookingId", b.ID),
		zap.String("serviceId", b.ServiceID),
		zap.String("customerId", b.CustomerID))
	s.emit(ctx, models.ProviderRoom(b.ProviderID), models.EventBookingReceived, b)
	return b, nil
}

// UpdateStatus moves a booking along the lifecycle. Providers may confirm,
// complete or cancel their bookings; customers may only cancel theirs.
func (s *DefaultBookingService) UpdateStatus(ctx context.Context, actor models.Actor, bookingID string, status models.BookingStatus) (*models.Booking, error) {
	if !status.Valid() {
		return nil, utils.Validation("invalid booking status", map[string]any{"status": status})
	}
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !canSetStatus(actor, b, status) {
		return nil, utils.Forbidden(fmt.Sprintf("not allowed to mark this booking %s", status))
	}
	if !b.Status.CanTransitionTo(status) {
		return nil, utils.InvalidState(fmt.Sprintf("cannot change booking from %s to %s", b.Status, status)).
			WithDetails(map[string]any{"from": b.Status, "to": status})
	}

	updated, err := s.Repo.UpdateStatus(ctx, bookingID, b.Status, status)
	if err != nil {
		return nil, mapWriteErr(err)
	}

	s.Logger.Info("booking status updated",
		zap.String("bookingId", bookingID),
		zap.String("from", string(b.Status)),
		zap.String("to", string(status)),
		zap.String("by", actor.ID))
	s.emit(ctx, models.CustomerRoom(updated.CustomerID), models.EventBookingUpdated, updated)
	return updated, nil
}

// UpdatePaymentStatus records a manual payment state change. Completion is
// reserved for the payment bridge, which verifies it with the gateway.
func (s *DefaultBookingService) UpdatePaymentStatus(ctx context.Context, actor models.Actor, bookingID string, status models.PaymentStatus) (*models.Booking, error) {
	if !status.Valid() {
		return nil, utils.Validation("invalid payment status", map[string]any{"paymentStatus": status})
	}
	if status == models.PaymentCompleted {
		return nil, utils.Forbidden("payment completion can only be confirmed through the payment gateway")
	}
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !(actor.Role == models.RoleProvider && actor.ID == b.ProviderID) {
		return nil, utils.Forbidden("not allowed to change the payment status of this booking")
	}
	if !b.PaymentStatus.CanTransitionTo(status) {
		return nil, utils.InvalidState(fmt.Sprintf("cannot change payment from %s to %s", b.PaymentStatus, status)).
			WithDetails(map[string]any{"from": b.PaymentStatus, "to": status})
	}

	updated, err := s.Repo.UpdatePaymentStatus(ctx, bookingID, b.PaymentStatus, status)
	if err != nil {
		return nil, mapWriteErr(err)
	}
	s.emit(ctx, models.CustomerRoom(updated.CustomerID), models.EventBookingUpdated, updated)
	return updated, nil
}

func (s *DefaultBookingService) Get(ctx context.Context, actor models.Actor, bookingID string) (*models.BookingWithService, error) {
	b, err := s.Repo.GetWithService(ctx, bookingID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NotFound("booking")
	}
	if err != nil {
		return nil, utils.Internal("failed to load booking", err)
	}
	if !actor.IsAdmin() && actor.ID != b.CustomerID && actor.ID != b.ProviderID {
		return nil, utils.Forbidden("not a participant of this booking")
	}
	return b, nil
}

func (s *DefaultBookingService) List(ctx context.Context, actor models.Actor) ([]models.BookingWithService, error) {
	who := bookingRepo.AsCustomer
	if actor.Role == models.RoleProvider {
		who = bookingRepo.AsProvider
	}
	bookings, err := s.Repo.ListByParticipant(ctx, who, actor.ID)
	if err != nil {
		return nil, utils.Internal("failed to list bookings", err)
	}
	return bookings, nil
}

func (s *DefaultBookingService) load(ctx context.Context, id string) (*models.Booking, error) {
	b, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NotFound("booking")
	}
	if err != nil {
		return nil, utils.Internal("failed to load booking", err)
	}
	return b, nil
}

// emit publishes after the write has committed; a failed fan-out is logged and
// never undoes the write.
func (s *DefaultBookingService) emit(ctx context.Context, room, event string, payload any) {
	if err := s.Publisher.Emit(ctx, room, event, payload); err != nil {
		s.Logger.Warn("failed to emit event", zap.String("event", event), zap.String("room", room), zap.Error(err))
	}
}

func canSetStatus(actor models.Actor, b *models.Booking, status models.BookingStatus) bool {
	switch {
	case actor.IsAdmin():
		return true
	case actor.Role == models.RoleProvider && actor.ID == b.ProviderID:
		return status == models.BookingConfirmed || status == models.BookingCompleted || status == models.BookingCancelled
	case actor.Role == models.RoleCustomer && actor.ID == b.CustomerID:
		return status == models.BookingCancelled
	}
	return false
}

func mapWriteErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrStale):
		return utils.InvalidState("booking was modified concurrently, reload and retry")
	case errors.Is(err, repository.ErrNotFound):
		return utils.NotFound("booking")
	}
	return utils.Internal("failed to update booking", err)
}
