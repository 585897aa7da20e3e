package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"taskhive/models"

	"firebase.google.com/go/v4/messaging"
)

// TokenLookup resolves a user's FCM device token.
type TokenLookup interface {
	FCMToken(ctx context.Context, userID string) (string, error)
}

// FCMSender is the subset of the Firebase messaging client we use.
type FCMSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// PushSink mirrors realtime events as FCM pushes so offline users still hear
// about them.
type PushSink struct {
	sender FCMSender
	tokens TokenLookup
}

func NewPushSink(sender FCMSender, tokens TokenLookup) *PushSink {
	return &PushSink{sender: sender, tokens: tokens}
}

func (s *PushSink) Name() string { return "fcm" }

var pushCopy = map[string][2]string{
	models.EventBookingReceived: {"New booking", "You have a new booking request."},
	models.EventBookingUpdated:  {"Booking updated", "Your booking status has changed."},
	models.EventPaymentReceived: {"Payment received", "A customer has paid for a booking."},
	models.EventPaymentFailed:   {"Payment failed", "Payment failed. Please try again."},
}

func (s *PushSink) Deliver(ctx context.Context, env models.Envelope) error {
	copyText, ok := pushCopy[env.Event]
	if !ok {
		return nil
	}
	role, userID, ok := strings.Cut(env.Room, "-")
	if !ok || userID == "" {
		return nil
	}

	token, err := s.tokens.FCMToken(ctx, userID)
	if err != nil {
		return fmt.Errorf("could not find user %s: %w", userID, err)
	}
	if token == "" {
		return nil
	}

	data := map[string]string{"event": env.Event, "role": role}
	var fields map[string]any
	if err := json.Unmarshal(env.Data, &fields); err == nil {
		for k, v := range fields {
			if str, ok := v.(string); ok {
				data[k] = str
			}
		}
	}

	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: copyText[0],
			Body:  copyText[1],
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	}

	if _, err := s.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send FCM message: %w", err)
	}
	return nil
}
