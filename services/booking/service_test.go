package booking

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"taskhive/database/repository/repotest"
	"taskhive/models"
	"taskhive/utils"

	"go.uber.org/zap"
)

var (
	customer      = models.Actor{ID: "cust-1", Role: models.RoleCustomer}
	otherCustomer = models.Actor{ID: "cust-2", Role: models.RoleCustomer}
	provider      = models.Actor{ID: "prov-1", Role: models.RoleProvider}
	otherProvider = models.Actor{ID: "prov-2", Role: models.RoleProvider}
	admin         = models.Actor{ID: "admin-1", Role: models.RoleAdmin}
)

func setup(t *testing.T) (*DefaultBookingService, *repotest.Store, *repotest.RecordingPublisher) {
	t.Helper()
	store := repotest.NewStore()
	store.PutService(models.Service{ID: "svc-1", ProviderID: provider.ID, Name: "Deep Clean", Price: 80, Status: models.ServiceActive})
	pub := &repotest.RecordingPublisher{}
	svc := &DefaultBookingService{
		Repo:      store.BookingRepo(),
		Services:  store.ServiceRepo(),
		Publisher: pub,
		Logger:    zap.NewNop(),
	}
	return svc, store, pub
}

func request() models.CreateBookingRequest {
	return models.CreateBookingRequest{
		ServiceID: "svc-1",
		Date:      time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC),
		Time:      "10:00",
		Address:   "12 Riverside Dr",
	}
}

func seedBooking(store *repotest.Store, status models.BookingStatus, payment models.PaymentStatus) {
	store.PutBooking(models.Booking{
		ID:            "bk-1",
		ServiceID:     "svc-1",
		CustomerID:    customer.ID,
		ProviderID:    provider.ID,
		Status:        status,
		PaymentStatus: payment,
		CreatedAt:     time.Now(),
	})
}

func TestCreateBooking(t *testing.T) {
	svc, store, pub := setup(t)

	b, err := svc.Create(context.Background(), customer, request())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if b.Status != models.BookingPending || b.PaymentStatus != models.PaymentPending {
		t.Errorf("unexpected initial state: %s/%s", b.Status, b.PaymentStatus)
	}
	if b.ProviderID != provider.ID || b.CustomerID != customer.ID {
		t.Errorf("participants not set: %+v", b)
	}
	if _, ok := store.Bookings[b.ID]; !ok {
		t.Fatal("booking not persisted")
	}

	ev := pub.Last()
	if ev.Event != models.EventBookingReceived || ev.Room != "provider-prov-1" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	var payload models.Booking
	if err := json.Unmarshal(ev.Payload, &payload); err != nil || payload.ID != b.ID {
		t.Errorf("payload mismatch: %s", ev.Payload)
	}
}

func TestCreateBookingValidation(t *testing.T) {
	tests := []struct {
		name   string
		actor  models.Actor
		mutate func(*models.CreateBookingRequest)
		code   string
	}{
		{"missing address", customer, func(r *models.CreateBookingRequest) { r.Address = "" }, utils.CodeValidation},
		{"missing time", customer, func(r *models.CreateBookingRequest) { r.Time = "" }, utils.CodeValidation},
		{"unknown service", customer, func(r *models.CreateBookingRequest) { r.ServiceID = "nope" }, utils.CodeValidation},
		{"provider mismatch", customer, func(r *models.CreateBookingRequest) { r.ProviderID = otherProvider.ID }, utils.CodeValidation},
		{"provider cannot book", provider, func(*models.CreateBookingRequest) {}, utils.CodeForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, pub := setup(t)
			req := request()
			tt.mutate(&req)

			_, err := svc.Create(context.Background(), tt.actor, req)
			if !utils.IsCode(err, tt.code) {
				t.Fatalf("expected %s, got %v", tt.code, err)
			}
			if len(store.Bookings) != 0 || len(pub.Events) != 0 {
				t.Error("nothing should be persisted or emitted")
			}
		})
	}
}

func TestCreateBookingMatchingProviderAccepted(t *testing.T) {
	svc, _, _ := setup(t)
	req := request()
	req.ProviderID = provider.ID
	if _, err := svc.Create(context.Background(), customer, req); err != nil {
		t.Fatalf("Create: %v", err)
	}
}

func TestCreateBookingInactiveService(t *testing.T) {
	svc, store, _ := setup(t)
	store.PutService(models.Service{ID: "svc-1", ProviderID: provider.ID, Status: models.ServiceSuspended})
	if _, err := svc.Create(context.Background(), customer, request()); !utils.IsCode(err, utils.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateStatus(t *testing.T) {
	tests := []struct {
		name    string
		actor   models.Actor
		from    models.BookingStatus
		to      models.BookingStatus
		code    string
		applied bool
	}{
		{"provider confirms", provider, models.BookingPending, models.BookingConfirmed, "", true},
		{"provider completes", provider, models.BookingConfirmed, models.BookingCompleted, "", true},
		{"provider cancels", provider, models.BookingConfirmed, models.BookingCancelled, "", true},
		{"customer cancels", customer, models.BookingPending, models.BookingCancelled, "", true},
		{"admin confirms", admin, models.BookingPending, models.BookingConfirmed, "", true},
		{"customer cannot confirm", customer, models.BookingPending, models.BookingConfirmed, utils.CodeForbidden, false},
		{"customer cannot complete", customer, models.BookingConfirmed, models.BookingCompleted, utils.CodeForbidden, false},
		{"other provider", otherProvider, models.BookingPending, models.BookingConfirmed, utils.CodeForbidden, false},
		{"other customer", otherCustomer, models.BookingPending, models.BookingCancelled, utils.CodeForbidden, false},
		{"pending to completed", provider, models.BookingPending, models.BookingCompleted, utils.CodeInvalidState, false},
		{"completed is terminal", provider, models.BookingCompleted, models.BookingCancelled, utils.CodeInvalidState, false},
		{"cancelled is terminal", provider, models.BookingCancelled, models.BookingConfirmed, utils.CodeInvalidState, false},
		{"same state", provider, models.BookingConfirmed, models.BookingConfirmed, utils.CodeInvalidState, false},
		{"unknown status", provider, models.BookingPending, "archived", utils.CodeValidation, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, pub := setup(t)
			seedBooking(store, tt.from, models.PaymentPending)

			b, err := svc.UpdateStatus(context.Background(), tt.actor, "bk-1", tt.to)
			if tt.code != "" {
				if !utils.IsCode(err, tt.code) {
					t.Fatalf("expected %s, got %v", tt.code, err)
				}
				if store.Booking("bk-1").Status != tt.from {
					t.Error("status must be unchanged")
				}
				if len(pub.Events) != 0 {
					t.Error("no event expected on failure")
				}
				return
			}
			if err != nil {
				t.Fatalf("UpdateStatus: %v", err)
			}
			if b.Status != tt.to || store.Booking("bk-1").Status != tt.to {
				t.Errorf("status = %s, want %s", b.Status, tt.to)
			}
			ev := pub.Last()
			if ev.Event != models.EventBookingUpdated || ev.Room != "customer-cust-1" {
				t.Errorf("unexpected event %+v", ev)
			}
		})
	}
}

func TestUpdateStatusNotFound(t *testing.T) {
	svc, _, _ := setup(t)
	if _, err := svc.UpdateStatus(context.Background(), provider, "missing", models.BookingConfirmed); !utils.IsCode(err, utils.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateStatusSurvivesPublishFailure(t *testing.T) {
	svc, store, pub := setup(t)
	seedBooking(store, models.BookingPending, models.PaymentPending)
	pub.Err = context.DeadlineExceeded

	if _, err := svc.UpdateStatus(context.Background(), provider, "bk-1", models.BookingConfirmed); err != nil {
		t.Fatalf("publish failure must not fail the update: %v", err)
	}
	if store.Booking("bk-1").Status != models.BookingConfirmed {
		t.Error("status should be persisted")
	}
}

func TestUpdatePaymentStatus(t *testing.T) {
	tests := []struct {
		name  string
		actor models.Actor
		from  models.PaymentStatus
		to    models.PaymentStatus
		code  string
	}{
		{"provider marks failed", provider, models.PaymentPending, models.PaymentFailed, ""},
		{"provider refunds", provider, models.PaymentCompleted, models.PaymentRefunded, ""},
		{"admin resets failed", admin, models.PaymentFailed, models.PaymentPending, ""},
		{"completed only via gateway", provider, models.PaymentPending, models.PaymentCompleted, utils.CodeForbidden},
		{"customer not allowed", customer, models.PaymentPending, models.PaymentFailed, utils.CodeForbidden},
		{"refunded is terminal", provider, models.PaymentRefunded, models.PaymentPending, utils.CodeInvalidState},
		{"pending cannot refund", provider, models.PaymentPending, models.PaymentRefunded, utils.CodeInvalidState},
		{"unknown", provider, models.PaymentPending, "void", utils.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, pub := setup(t)
			seedBooking(store, models.BookingConfirmed, tt.from)

			b, err := svc.UpdatePaymentStatus(context.Background(), tt.actor, "bk-1", tt.to)
			if tt.code != "" {
				if !utils.IsCode(err, tt.code) {
					t.Fatalf("expected %s, got %v", tt.code, err)
				}
				if store.Booking("bk-1").PaymentStatus != tt.from {
					t.Error("payment status must be unchanged")
				}
				return
			}
			if err != nil {
				t.Fatalf("UpdatePaymentStatus: %v", err)
			}
			if b.PaymentStatus != tt.to {
				t.Errorf("paymentStatus = %s, want %s", b.PaymentStatus, tt.to)
			}
			if pub.Count(models.EventBookingUpdated) != 1 {
				t.Error("expected a bookingUpdated event")
			}
		})
	}
}

func TestGetAndListBookings(t *testing.T) {
	svc, store, _ := setup(t)
	seedBooking(store, models.BookingPending, models.PaymentPending)

	got, err := svc.Get(context.Background(), customer, "bk-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Service == nil || got.Service.Name != "Deep Clean" {
		t.Errorf("service not joined: %+v", got.Service)
	}
	if _, err := svc.Get(context.Background(), otherCustomer, "bk-1"); !utils.IsCode(err, utils.CodeForbidden) {
		t.Errorf("expected forbidden for outsider, got %v", err)
	}
	if _, err := svc.Get(context.Background(), customer, "nope"); !utils.IsCode(err, utils.CodeNotFound) {
		t.Errorf("expected not found, got %v", err)
	}

	mine, err := svc.List(context.Background(), provider)
	if err != nil || len(mine) != 1 {
		t.Fatalf("provider list = %v, %v", mine, err)
	}
	none, err := svc.List(context.Background(), otherCustomer)
	if err != nil || len(none) != 0 {
		t.Fatalf("other customer list = %v, %v", none, err)
	}
}
