package payment

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"taskhive/database/repository/repotest"
	"taskhive/models"
	"taskhive/utils"

	"go.uber.org/zap"
)

type mockGateway struct {
	createIntentFunc func(ctx context.Context, req IntentRequest) (*models.PaymentIntent, error)
	getIntentFunc    func(ctx context.Context, id string) (*models.PaymentIntent, error)
	parseWebhookFunc func(payload []byte, signature string) (*models.WebhookEvent, error)
	balanceFunc      func(ctx context.Context) (*models.GatewayBalance, error)

	created []IntentRequest
}

func (m *mockGateway) CreateIntent(ctx context.Context, req IntentRequest) (*models.PaymentIntent, error) {
	m.created = append(m.created, req)
	if m.createIntentFunc != nil {
		return m.createIntentFunc(ctx, req)
	}
	return &models.PaymentIntent{ID: "pi_1", ClientSecret: "pi_1_secret", Amount: req.Amount, Metadata: req.Metadata}, nil
}

func (m *mockGateway) GetIntent(ctx context.Context, id string) (*models.PaymentIntent, error) {
	if m.getIntentFunc != nil {
		return m.getIntentFunc(ctx, id)
	}
	return nil, errors.New("not configured")
}

func (m *mockGateway) ParseWebhook(payload []byte, signature string) (*models.WebhookEvent, error) {
	if m.parseWebhookFunc != nil {
		return m.parseWebhookFunc(payload, signature)
	}
	return nil, ErrWebhookDisabled
}

func (m *mockGateway) Balance(ctx context.Context) (*models.GatewayBalance, error) {
	if m.balanceFunc != nil {
		return m.balanceFunc(ctx)
	}
	return &models.GatewayBalance{}, nil
}

var (
	customer = models.Actor{ID: "cust-1", Role: models.RoleCustomer}
	stranger = models.Actor{ID: "cust-9", Role: models.RoleCustomer}
	provider = models.Actor{ID: "prov-1", Role: models.RoleProvider}
	admin    = models.Actor{ID: "admin-1", Role: models.RoleAdmin}
)

func setup(t *testing.T, price float64, payment models.PaymentStatus, intentID string) (*DefaultPaymentService, *repotest.Store, *repotest.RecordingPublisher, *mockGateway) {
	t.Helper()
	store := repotest.NewStore()
	store.PutService(models.Service{ID: "svc-1", ProviderID: provider.ID, Name: "Lawn Mowing", Price: price, Status: models.ServiceActive})
	var charged int64
	if intentID != "" {
		charged = toMinorUnits(price)
	}
	store.PutBooking(models.Booking{
		ID:              "bk-1",
		ServiceID:       "svc-1",
		CustomerID:      customer.ID,
		ProviderID:      provider.ID,
		Status:          models.BookingConfirmed,
		PaymentStatus:   payment,
		PaymentIntentID: intentID,
		PaymentAmount:   charged,
	})
	pub := &repotest.RecordingPublisher{}
	gw := &mockGateway{}
	svc := &DefaultPaymentService{
		Bookings:  store.BookingRepo(),
		Services:  store.ServiceRepo(),
		Gateway:   gw,
		Publisher: pub,
		Currency:  "usd",
		Logger:    zap.NewNop(),
	}
	return svc, store, pub, gw
}

func succeededIntent(amount int64, bookingID string) func(context.Context, string) (*models.PaymentIntent, error) {
	return func(_ context.Context, id string) (*models.PaymentIntent, error) {
		return &models.PaymentIntent{
			ID:       id,
			Amount:   amount,
			Status:   models.IntentSucceeded,
			Metadata: map[string]string{"bookingId": bookingID},
		}, nil
	}
}

func TestCreateIntent(t *testing.T) {
	svc, store, _, gw := setup(t, 49.99, models.PaymentPending, "")

	resp, err := svc.CreateIntent(context.Background(), customer, "bk-1")
	if err != nil {
		t.Fatalf("CreateIntent: %v", err)
	}
	if resp.ClientSecret != "pi_1_secret" {
		t.Errorf("clientSecret = %q", resp.ClientSecret)
	}
	if len(gw.created) != 1 {
		t.Fatalf("expected one gateway call, got %d", len(gw.created))
	}
	req := gw.created[0]
	if req.Amount != 4999 || req.Currency != "usd" {
		t.Errorf("unexpected intent request %+v", req)
	}
	if req.Metadata["bookingId"] != "bk-1" || req.Metadata["serviceId"] != "svc-1" {
		t.Errorf("unexpected metadata %v", req.Metadata)
	}
	if b := store.Booking("bk-1"); b.PaymentIntentID != "pi_1" || b.PaymentAmount != 4999 {
		t.Errorf("intent not recorded on booking: id=%q amount=%d", b.PaymentIntentID, b.PaymentAmount)
	}
}

func TestCreateIntentErrors(t *testing.T) {
	t.Run("missing booking", func(t *testing.T) {
		svc, _, _, _ := setup(t, 10, models.PaymentPending, "")
		if _, err := svc.CreateIntent(context.Background(), customer, "nope"); !utils.IsCode(err, utils.CodeNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("zero price never reaches the gateway", func(t *testing.T) {
		svc, _, _, gw := setup(t, 0, models.PaymentPending, "")
		if _, err := svc.CreateIntent(context.Background(), customer, "bk-1"); !utils.IsCode(err, utils.CodeInvalidState) {
			t.Fatalf("expected invalid state, got %v", err)
		}
		if len(gw.created) != 0 {
			t.Error("gateway must not be called")
		}
	})

	t.Run("someone else's booking", func(t *testing.T) {
		svc, _, _, _ := setup(t, 10, models.PaymentPending, "")
		if _, err := svc.CreateIntent(context.Background(), stranger, "bk-1"); !utils.IsCode(err, utils.CodeForbidden) {
			t.Fatalf("expected forbidden, got %v", err)
		}
	})

	t.Run("already paid", func(t *testing.T) {
		svc, _, _, _ := setup(t, 10, models.PaymentCompleted, "pi_1")
		if _, err := svc.CreateIntent(context.Background(), customer, "bk-1"); !utils.IsCode(err, utils.CodeInvalidState) {
			t.Fatalf("expected invalid state, got %v", err)
		}
	})

	t.Run("gateway failure carries details", func(t *testing.T) {
		svc, store, _, gw := setup(t, 10, models.PaymentPending, "")
		gw.createIntentFunc = func(context.Context, IntentRequest) (*models.PaymentIntent, error) {
			return nil, &GatewayError{Type: "card_error", Code: "card_declined", Message: "declined"}
		}
		_, err := svc.CreateIntent(context.Background(), customer, "bk-1")
		if !utils.IsCode(err, utils.CodeUpstream) {
			t.Fatalf("expected upstream error, got %v", err)
		}
		appErr := utils.AsAppError(err)
		if appErr.Details["type"] != "card_error" || appErr.Details["code"] != "card_declined" {
			t.Errorf("unexpected details %v", appErr.Details)
		}
		if store.Booking("bk-1").PaymentIntentID != "" {
			t.Error("no intent should be recorded")
		}
	})
}

func TestConfirmSuccess(t *testing.T) {
	svc, store, pub, gw := setup(t, 25, models.PaymentPending, "pi_1")
	gw.getIntentFunc = succeededIntent(2500, "bk-1")

	b, err := svc.ConfirmSuccess(context.Background(), customer, "bk-1")
	if err != nil {
		t.Fatalf("ConfirmSuccess: %v", err)
	}
	if b.PaymentStatus != models.PaymentCompleted || store.Booking("bk-1").PaymentStatus != models.PaymentCompleted {
		t.Fatal("payment not completed")
	}

	ev := pub.Last()
	if ev.Event != models.EventPaymentReceived || ev.Room != "provider-prov-1" {
		t.Fatalf("unexpected event %+v", ev)
	}
	var payload models.PaymentReceivedPayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		t.Fatal(err)
	}
	if payload.BookingID != "bk-1" || payload.Amount != 25 {
		t.Errorf("unexpected payload %+v", payload)
	}

	// A repeated confirmation changes nothing and emits nothing.
	if _, err := svc.ConfirmSuccess(context.Background(), customer, "bk-1"); err != nil {
		t.Fatalf("repeat ConfirmSuccess: %v", err)
	}
	if pub.Count(models.EventPaymentReceived) != 1 {
		t.Errorf("expected exactly one paymentReceived, got %d", pub.Count(models.EventPaymentReceived))
	}
}

func TestConfirmSuccessVerification(t *testing.T) {
	tests := []struct {
		name     string
		intentID string
		intent   *models.PaymentIntent
		gwErr    error
		code     string
	}{
		{"no intent recorded", "", nil, nil, utils.CodeInvalidState},
		{"intent not succeeded", "pi_1", &models.PaymentIntent{ID: "pi_1", Amount: 2500, Status: "requires_payment_method", Metadata: map[string]string{"bookingId": "bk-1"}}, nil, utils.CodeInvalidState},
		{"intent for another booking", "pi_1", &models.PaymentIntent{ID: "pi_1", Amount: 2500, Status: models.IntentSucceeded, Metadata: map[string]string{"bookingId": "bk-2"}}, nil, utils.CodeInvalidState},
		{"amount mismatch", "pi_1", &models.PaymentIntent{ID: "pi_1", Amount: 100, Status: models.IntentSucceeded, Metadata: map[string]string{"bookingId": "bk-1"}}, nil, utils.CodeInvalidState},
		{"gateway down", "pi_1", nil, errors.New("timeout"), utils.CodeUpstream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, pub, gw := setup(t, 25, models.PaymentPending, tt.intentID)
			gw.getIntentFunc = func(context.Context, string) (*models.PaymentIntent, error) {
				return tt.intent, tt.gwErr
			}

			_, err := svc.ConfirmSuccess(context.Background(), customer, "bk-1")
			if !utils.IsCode(err, tt.code) {
				t.Fatalf("expected %s, got %v", tt.code, err)
			}
			if store.Booking("bk-1").PaymentStatus != models.PaymentPending {
				t.Error("payment status must be unchanged")
			}
			if len(pub.Events) != 0 {
				t.Error("no event expected")
			}
		})
	}
}

func TestConfirmSuccessAfterPriceChange(t *testing.T) {
	svc, store, pub, gw := setup(t, 25, models.PaymentPending, "")
	if _, err := svc.CreateIntent(context.Background(), customer, "bk-1"); err != nil {
		t.Fatalf("CreateIntent: %v", err)
	}
	// The provider reprices the service after the customer was charged.
	store.PutService(models.Service{ID: "svc-1", ProviderID: provider.ID, Name: "Lawn Mowing", Price: 30, Status: models.ServiceActive})
	gw.getIntentFunc = succeededIntent(2500, "bk-1")

	b, err := svc.ConfirmSuccess(context.Background(), customer, "bk-1")
	if err != nil {
		t.Fatalf("ConfirmSuccess: %v", err)
	}
	if b.PaymentStatus != models.PaymentCompleted {
		t.Fatalf("paymentStatus = %s, want completed", b.PaymentStatus)
	}
	var payload models.PaymentReceivedPayload
	if err := json.Unmarshal(pub.Last().Payload, &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Amount != 25 {
		t.Errorf("paymentReceived amount = %v, want the charged 25", payload.Amount)
	}
}

func TestConfirmSuccessAfterFailureRetry(t *testing.T) {
	svc, _, _, gw := setup(t, 25, models.PaymentFailed, "pi_1")
	gw.getIntentFunc = succeededIntent(2500, "bk-1")

	b, err := svc.ConfirmSuccess(context.Background(), customer, "bk-1")
	if err != nil || b.PaymentStatus != models.PaymentCompleted {
		t.Fatalf("failed payments may still complete: %v", err)
	}
}

func TestConfirmFailure(t *testing.T) {
	svc, store, pub, _ := setup(t, 25, models.PaymentPending, "pi_1")

	if _, err := svc.ConfirmFailure(context.Background(), stranger, "bk-1"); !utils.IsCode(err, utils.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	b, err := svc.ConfirmFailure(context.Background(), customer, "bk-1")
	if err != nil {
		t.Fatalf("ConfirmFailure: %v", err)
	}
	if b.PaymentStatus != models.PaymentFailed || store.Booking("bk-1").PaymentStatus != models.PaymentFailed {
		t.Fatal("payment not marked failed")
	}

	ev := pub.Last()
	if ev.Event != models.EventPaymentFailed || ev.Room != "customer-cust-1" {
		t.Fatalf("unexpected event %+v", ev)
	}
	var payload models.PaymentFailedPayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		t.Fatal(err)
	}
	if payload.BookingID != "bk-1" || payload.Message != "Payment failed. Please try again." {
		t.Errorf("unexpected payload %+v", payload)
	}
}

func TestConfirmFailureOnCompletedPayment(t *testing.T) {
	svc, store, _, _ := setup(t, 25, models.PaymentCompleted, "pi_1")
	if _, err := svc.ConfirmFailure(context.Background(), customer, "bk-1"); !utils.IsCode(err, utils.CodeInvalidState) {
		t.Fatalf("expected invalid state, got %v", err)
	}
	if store.Booking("bk-1").PaymentStatus != models.PaymentCompleted {
		t.Error("completed payment must stay completed")
	}
}

func TestHistory(t *testing.T) {
	svc, _, _, _ := setup(t, 25, models.PaymentPending, "")

	got, err := svc.History(context.Background(), provider, "", models.RoleProvider)
	if err != nil || len(got) != 1 || got[0].Service == nil {
		t.Fatalf("provider history = %+v, %v", got, err)
	}
	got, err = svc.History(context.Background(), customer, customer.ID, models.RoleCustomer)
	if err != nil || len(got) != 1 {
		t.Fatalf("customer history = %+v, %v", got, err)
	}
	if _, err := svc.History(context.Background(), stranger, customer.ID, models.RoleCustomer); !utils.IsCode(err, utils.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := svc.History(context.Background(), admin, customer.ID, models.RoleCustomer); err != nil {
		t.Fatalf("admin history: %v", err)
	}
}

func TestHandleWebhook(t *testing.T) {
	t.Run("succeeded", func(t *testing.T) {
		svc, store, pub, gw := setup(t, 25, models.PaymentPending, "pi_1")
		gw.getIntentFunc = succeededIntent(2500, "bk-1")
		gw.parseWebhookFunc = func([]byte, string) (*models.WebhookEvent, error) {
			return &models.WebhookEvent{Type: models.WebhookIntentSucceeded, IntentID: "pi_1", BookingID: "bk-1"}, nil
		}
		if err := svc.HandleWebhook(context.Background(), []byte("{}"), "sig"); err != nil {
			t.Fatalf("HandleWebhook: %v", err)
		}
		if store.Booking("bk-1").PaymentStatus != models.PaymentCompleted {
			t.Error("payment not completed")
		}
		if pub.Count(models.EventPaymentReceived) != 1 {
			t.Error("expected paymentReceived")
		}
	})

	t.Run("failed", func(t *testing.T) {
		svc, store, pub, gw := setup(t, 25, models.PaymentPending, "pi_1")
		gw.parseWebhookFunc = func([]byte, string) (*models.WebhookEvent, error) {
			return &models.WebhookEvent{Type: models.WebhookIntentFailed, IntentID: "pi_1", BookingID: "bk-1"}, nil
		}
		if err := svc.HandleWebhook(context.Background(), nil, "sig"); err != nil {
			t.Fatalf("HandleWebhook: %v", err)
		}
		if store.Booking("bk-1").PaymentStatus != models.PaymentFailed || pub.Count(models.EventPaymentFailed) != 1 {
			t.Error("payment failure not applied")
		}
	})

	t.Run("foreign intent ignored", func(t *testing.T) {
		svc, store, pub, gw := setup(t, 25, models.PaymentPending, "pi_1")
		gw.parseWebhookFunc = func([]byte, string) (*models.WebhookEvent, error) {
			return &models.WebhookEvent{Type: models.WebhookIntentSucceeded, IntentID: "pi_other", BookingID: "bk-1"}, nil
		}
		if err := svc.HandleWebhook(context.Background(), nil, "sig"); err != nil {
			t.Fatalf("HandleWebhook: %v", err)
		}
		if store.Booking("bk-1").PaymentStatus != models.PaymentPending || len(pub.Events) != 0 {
			t.Error("foreign intent must not change the booking")
		}
	})

	t.Run("bad signature", func(t *testing.T) {
		svc, _, _, gw := setup(t, 25, models.PaymentPending, "pi_1")
		gw.parseWebhookFunc = func([]byte, string) (*models.WebhookEvent, error) {
			return nil, ErrInvalidSignature
		}
		if err := svc.HandleWebhook(context.Background(), nil, "bad"); !utils.IsCode(err, utils.CodeValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("other event types", func(t *testing.T) {
		svc, _, _, gw := setup(t, 25, models.PaymentPending, "pi_1")
		gw.parseWebhookFunc = func([]byte, string) (*models.WebhookEvent, error) {
			return &models.WebhookEvent{Type: "charge.refunded"}, nil
		}
		if err := svc.HandleWebhook(context.Background(), nil, "sig"); err != nil {
			t.Fatalf("unexpected error %v", err)
		}
	})
}

func TestTestConnection(t *testing.T) {
	svc, _, _, gw := setup(t, 25, models.PaymentPending, "")
	gw.balanceFunc = func(context.Context) (*models.GatewayBalance, error) {
		return &models.GatewayBalance{Available: []models.BalanceAmount{{Amount: 1000, Currency: "usd"}}}, nil
	}
	bal, err := svc.TestConnection(context.Background())
	if err != nil || len(bal.Available) != 1 {
		t.Fatalf("TestConnection = %+v, %v", bal, err)
	}

	gw.balanceFunc = func(context.Context) (*models.GatewayBalance, error) {
		return nil, &GatewayError{Type: "authentication_error", Message: "bad key"}
	}
	if _, err := svc.TestConnection(context.Background()); !utils.IsCode(err, utils.CodeUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestToMinorUnits(t *testing.T) {
	tests := map[float64]int64{19.99: 1999, 0.1: 10, 100: 10000, 49.5: 4950}
	for in, want := range tests {
		if got := toMinorUnits(in); got != want {
			t.Errorf("toMinorUnits(%v) = %d, want %d", in, got, want)
		}
	}
}
