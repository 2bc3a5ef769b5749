// Package events carries change notifications from the stores to whoever
// renders them: the view shell and the browser's server-sent event stream.
package events

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/mrlokans/wordbook/internal/logging"
)

const (
	NotebooksChanged = "notebooks:changed" // list or current selection replaced
	WordsChanged     = "words:changed"     // open detail word list reloaded
	WordAdded        = "words:added"       // data is the target notebook id
	DraftChanged     = "draft:changed"
	SelectionChanged = "selection:changed"
)

// Emitter decouples state owners from their observers.
type Emitter interface {
	Emit(ctx context.Context, event string, data any)
}

type Event struct {
	Name string
	Data any
}

// Handler runs synchronously inside Emit; it must not block.
type Handler func(ctx context.Context, ev Event)

// Bus fans events out to synchronous handlers and buffered channel subscribers.
// A subscriber that falls behind misses events rather than stalling the emitter.
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[int]Handler
	channels map[int]chan Event
	logger   *zap.Logger
}

func NewBus(logger *zap.Logger) *Bus {
	return &Bus{
		handlers: make(map[int]Handler),
		channels: make(map[int]chan Event),
		logger:   logging.OrNop(logger).Named("events"),
	}
}

func (b *Bus) Emit(ctx context.Context, event string, data any) {
	ev := Event{Name: event, Data: data}

	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	for id, ch := range b.channels {
		select {
		case ch <- ev:
		default:
			b.logger.Debug("dropping event for slow subscriber", zap.String("event", event), zap.Int("subscriber", id))
		}
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ctx, ev)
	}
}

// On registers a handler and returns a function that removes it.
func (b *Bus) On(h Handler) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = h
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.handlers, id)
		b.mu.Unlock()
	}
}

// Subscribe returns a buffered channel of events and a cancel function that
// closes it. Cancel is safe to call more than once.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.channels[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.channels, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Subscribers reports how many channel subscribers are attached.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.channels)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Emit(context.Context, string, any) {}
