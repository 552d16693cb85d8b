// Package tracking delivers best-effort product analytics events.
package tracking

import (
	"context"
	"sync"
	"time"
)

// Kind names an analytics event.
type Kind string

const (
	KindImpression Kind = "match_impression"
	KindSwipe      Kind = "match_swipe"
	KindSave       Kind = "match_save"
	KindApply      Kind = "match_apply"
	KindModalOpen  Kind = "modal_open"
)

// Event is the payload nested under "event" in the envelope.
type Event struct {
	Type      Kind     `json:"type"`
	Direction string   `json:"direction,omitempty"`
	JobID     string   `json:"jobId,omitempty"`
	JobIDs    []string `json:"jobIds,omitempty"`
}

// Envelope is the body posted to the analytics endpoint.
type Envelope struct {
	Event Event `json:"event"`
	TS    int64 `json:"ts"`
}

func NewEnvelope(event Event, at time.Time) Envelope {
	return Envelope{Event: event, TS: at.UnixMilli()}
}

// Sink accepts events. Implementations must not block the caller and must
// never report delivery failures.
type Sink interface {
	Track(ctx context.Context, event Event)
}

type nopSink struct{}

// Nop discards every event.
func Nop() Sink { return nopSink{} }

func (nopSink) Track(context.Context, Event) {}

// Recorder keeps events in memory. It is meant for tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Track(_ context.Context, event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Kinds returns the recorded event kinds in order.
func (r *Recorder) Kinds() []Kind {
	events := r.Events()
	kinds := make([]Kind, 0, len(events))
	for _, e := range events {
		kinds = append(kinds, e.Type)
	}
	return kinds
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
