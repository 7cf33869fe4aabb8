// Package journal records strategy decisions and replay events.
package journal

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	TypeRun      = "run"
	TypeDecision = "decision"
	TypeFill     = "fill"
	TypeReject   = "reject"
)

// Event represents a journaled event.
type Event struct {
	ID          uuid.UUID
	Time        time.Time
	Type        string // run, decision, fill or reject
	Description string
	Data        map[string]any
}

// Journaler interface for journaling events.
//
// GetEvents returns events of eventType with start <= Time < end ordered by
// time. An empty eventType matches every type.
type Journaler interface {
	LogEvent(ctx context.Context, event Event) error
	GetEvents(ctx context.Context, eventType string, start, end time.Time) ([]Event, error)
}

// normalize fills in the id and timestamp a caller left empty.
func normalize(event Event) Event {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Time.IsZero() {
		event.Time = time.Now()
	}
	event.Time = event.Time.UTC()
	return event
}

func matches(e Event, eventType string, start, end time.Time) bool {
	if eventType != "" && e.Type != eventType {
		return false
	}
	return !e.Time.Before(start) && e.Time.Before(end)
}
