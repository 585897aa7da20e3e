package models

import "testing"

func TestBookingStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to BookingStatus
		want     bool
	}{
		{BookingPending, BookingConfirmed, true},
		{BookingPending, BookingCancelled, true},
		{BookingPending, BookingCompleted, false},
		{BookingConfirmed, BookingCompleted, true},
		{BookingConfirmed, BookingCancelled, true},
		{BookingConfirmed, BookingPending, false},
		{BookingCompleted, BookingCancelled, false},
		{BookingCompleted, BookingPending, false},
		{BookingCancelled, BookingConfirmed, false},
		{BookingCancelled, BookingCancelled, false},
		{BookingPending, BookingPending, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestPaymentStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to PaymentStatus
		want     bool
	}{
		{PaymentPending, PaymentCompleted, true},
		{PaymentPending, PaymentFailed, true},
		{PaymentPending, PaymentRefunded, false},
		{PaymentFailed, PaymentPending, true},
		{PaymentFailed, PaymentCompleted, true},
		{PaymentCompleted, PaymentRefunded, true},
		{PaymentCompleted, PaymentFailed, false},
		{PaymentRefunded, PaymentCompleted, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestStatusValid(t *testing.T) {
	if !BookingConfirmed.Valid() || BookingStatus("archived").Valid() {
		t.Error("BookingStatus.Valid misclassified")
	}
	if !PaymentRefunded.Valid() || PaymentStatus("void").Valid() {
		t.Error("PaymentStatus.Valid misclassified")
	}
}

func TestRoomFor(t *testing.T) {
	if got := RoomFor(Actor{ID: "p1", Role: RoleProvider}); got != "provider-p1" {
		t.Errorf("provider room = %q", got)
	}
	if got := RoomFor(Actor{ID: "c1", Role: RoleCustomer}); got != "customer-c1" {
		t.Errorf("customer room = %q", got)
	}
}
