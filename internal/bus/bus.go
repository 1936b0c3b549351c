package bus

import (
	"sync"

	"github.com/jlucaswrk/marauder-tui/internal/protocol"
)

// Logger defines the logging interface used by the Bus.
type Logger interface {
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Error(string, ...any) {}

// Observer receives every published event.
//
// Observers are invoked on the publishing goroutine, outside the bus
// lock. They must not assume any particular execution context; a
// consumer that needs its own context hands the event off through a
// channel.
type Observer func(protocol.Event)

// Handle identifies a subscription for later removal.
type Handle int

// Bus is a thread-safe multicast of parsed events to registered
// observers.
//
// Publish snapshots the observer list under a short critical section and
// invokes each observer outside it, so a slow observer cannot block
// registration and a reentrant Subscribe/Unsubscribe from inside a
// callback cannot deadlock. A panicking observer is isolated: the panic
// is logged and delivery continues to the remaining observers.
type Bus struct {
	mu        sync.Mutex
	observers map[Handle]Observer
	next      Handle
	logger    Logger
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{
		observers: make(map[Handle]Observer),
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger used for observer failure reports.
func (b *Bus) SetLogger(logger Logger) {
	b.mu.Lock()
	b.logger = logger
	b.mu.Unlock()
}

// Subscribe registers an observer and returns a handle for Unsubscribe.
func (b *Bus) Subscribe(fn Observer) Handle {
	b.mu.Lock()
	defer b.mu.Unlock()

	h := b.next
	b.next++
	b.observers[h] = fn
	return h
}

// Unsubscribe removes a previously registered observer.
// Unknown handles are ignored.
func (b *Bus) Unsubscribe(h Handle) {
	b.mu.Lock()
	delete(b.observers, h)
	b.mu.Unlock()
}

// Publish delivers event to every current observer.
func (b *Bus) Publish(event protocol.Event) {
	b.mu.Lock()
	snapshot := make([]Observer, 0, len(b.observers))
	for _, fn := range b.observers {
		snapshot = append(snapshot, fn)
	}
	logger := b.logger
	b.mu.Unlock()

	for _, fn := range snapshot {
		b.deliver(fn, event, logger)
	}
}

// deliver invokes one observer with panic isolation.
func (b *Bus) deliver(fn Observer, event protocol.Event, logger Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("event observer panic recovered",
				"event_type", event.EventType(),
				"panic", r,
			)
		}
	}()
	fn(event)
}
