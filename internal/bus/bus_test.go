package bus

import (
	"sync"
	"testing"

	"github.com/jlucaswrk/marauder-tui/internal/protocol"
)

// TestPublishDeliversToAllObservers verifies basic fan-out.
func TestPublishDeliversToAllObservers(t *testing.T) {
	b := New()

	var got []string
	b.Subscribe(func(e protocol.Event) { got = append(got, "a:"+e.EventType()) })
	b.Subscribe(func(e protocol.Event) { got = append(got, "b:"+e.EventType()) })

	b.Publish(protocol.ScanStopped{})

	if len(got) != 2 {
		t.Fatalf("deliveries = %d, want 2", len(got))
	}
}

// TestUnsubscribeStopsDelivery verifies handle-based removal.
func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New()

	count := 0
	h := b.Subscribe(func(protocol.Event) { count++ })

	b.Publish(protocol.ScanStopped{})
	b.Unsubscribe(h)
	b.Publish(protocol.ScanStopped{})

	if count != 1 {
		t.Errorf("deliveries = %d, want 1", count)
	}
}

// TestPanickingObserverIsIsolated verifies one failing observer does not
// prevent delivery to the others.
func TestPanickingObserverIsIsolated(t *testing.T) {
	b := New()

	b.Subscribe(func(protocol.Event) { panic("boom") })

	delivered := false
	b.Subscribe(func(protocol.Event) { delivered = true })

	b.Publish(protocol.RawLine{Text: "x"})

	if !delivered {
		t.Error("second observer not reached after first panicked")
	}
}

// TestReentrantSubscribeDoesNotDeadlock verifies callbacks may call back
// into the bus.
func TestReentrantSubscribeDoesNotDeadlock(t *testing.T) {
	b := New()

	var h Handle
	h = b.Subscribe(func(protocol.Event) {
		b.Unsubscribe(h)
		b.Subscribe(func(protocol.Event) {})
	})

	done := make(chan struct{})
	go func() {
		b.Publish(protocol.ScanStopped{})
		close(done)
	}()

	<-done
}

// TestConcurrentPublish verifies the bus is safe under concurrent use.
func TestConcurrentPublish(t *testing.T) {
	b := New()

	var mu sync.Mutex
	count := 0
	b.Subscribe(func(protocol.Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				b.Publish(protocol.RawLine{Text: "x"})
			}
		}()
	}
	wg.Wait()

	if count != 1000 {
		t.Errorf("deliveries = %d, want 1000", count)
	}
}
