package notification

import (
	"context"

	"taskhive/models"
)

// Publisher delivers a named event to every socket in a room. It is built
// once in main and injected into every component that emits events.
type Publisher interface {
	Emit(ctx context.Context, room, event string, payload any) error
}

// Bus carries envelopes between instances so a socket connected to any
// instance receives events emitted on any other.
type Bus interface {
	Publish(ctx context.Context, env models.Envelope) error
	// Subscribe blocks, handing every received envelope to deliver, until ctx
	// is cancelled.
	Subscribe(ctx context.Context, deliver func(models.Envelope)) error
}

// Sink is a best-effort secondary destination for emitted events.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, env models.Envelope) error
}
