package events

import (
	"context"
	"sync"
)

// MockEmitter records every emission for test assertions.
type MockEmitter struct {
	mu     sync.Mutex
	Events []Event
}

func (m *MockEmitter) Emit(_ context.Context, event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, Event{Name: event, Data: data})
}

// Count returns how many times event was emitted.
func (m *MockEmitter) Count(event string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, ev := range m.Events {
		if ev.Name == event {
			n++
		}
	}
	return n
}
