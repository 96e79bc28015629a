package audit

import (
	"time"

	"github.com/google/uuid"
)

// The ledger core only appends to the audit stream; it never reads it back.
// Events are plain immutable records handed to whatever sink is wired in.

type EventKind = string

var (
	KindEntryPosted       EventKind = "entry.posted"
	KindEntryReversed     EventKind = "entry.reversed"
	KindPeriodOpened      EventKind = "period.opened"
	KindPeriodTransition  EventKind = "period.transition"
	KindYearClosed        EventKind = "year.closed"
	KindDeadlineCompleted EventKind = "tax_deadline.completed"
)

type Event struct {
	ID        uuid.UUID         `json:"id"`
	Kind      EventKind         `json:"kind"`
	Actor     string            `json:"actor"`
	Subject   map[string]string `json:"subject"`
	CreatedAt time.Time         `json:"created_at"`
}

// Publisher is the narrow boundary to the external append-only log.
type Publisher interface {
	Publish(event Event) error
}

var Gateway Publisher

func Publish(kind EventKind, actor string, subject map[string]string) {
	if Gateway == nil {
		return
	}

	event := Event{
		ID:        uuid.New(),
		Kind:      kind,
		Actor:     actor,
		Subject:   subject,
		CreatedAt: time.Now(),
	}

	// The event is fire and forget; a sink failure never fails the
	// operation that emitted it.
	_ = Gateway.Publish(event)
}

// Recorder keeps events in memory. Tests install it as the gateway.
type Recorder struct {
	Events []Event
}

func (r *Recorder) Publish(event Event) error {
	r.Events = append(r.Events, event)
	return nil
}
