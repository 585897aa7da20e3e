package repotest

import (
	"context"
	"encoding/json"
	"sync"
)

// Emitted is one event captured by RecordingPublisher.
type Emitted struct {
	Room    string
	Event   string
	Payload json.RawMessage
}

// RecordingPublisher captures every Emit call.
type RecordingPublisher struct {
	mu     sync.Mutex
	Events []Emitted
	Err    error
}

func (p *RecordingPublisher) Emit(_ context.Context, room, event string, payload any) error {
	raw, _ := json.Marshal(payload)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, Emitted{Room: room, Event: event, Payload: raw})
	return p.Err
}

// Count returns how many events named event were emitted.
func (p *RecordingPublisher) Count(event string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.Events {
		if e.Event == event {
			n++
		}
	}
	return n
}

// Last returns the most recent event, or the zero value.
func (p *RecordingPublisher) Last() Emitted {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.Events) == 0 {
		return Emitted{}
	}
	return p.Events[len(p.Events)-1]
}
