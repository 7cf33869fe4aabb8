package journal

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Memory is an in-process Journaler. It is safe for concurrent use.
type Memory struct {
	mu     sync.RWMutex
	events []Event
}

func NewMemory() *Memory {
	return &Memory{events: make([]Event, 0, 1024)}
}

func (m *Memory) LogEvent(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	event = normalize(event)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *Memory) GetEvents(ctx context.Context, eventType string, start, end time.Time) ([]Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	start = start.UTC()
	end = end.UTC()
	var out []Event
	for _, e := range m.events {
		if matches(e, eventType, start, end) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out, nil
}

// Len reports how many events were logged.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.events)
}
