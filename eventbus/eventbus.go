// Package eventbus carries committed task mutations from the store to
// whoever is watching. The store only publishes named events with a
// payload; it never manages individual viewer connections.
package eventbus

import (
	"sync"

	"taskboard-service/logging"
	"taskboard-service/models"
)

// Handler receives task events in publish order.
type Handler func(event models.TaskEvent)

// Publisher is the side the task store sees.
type Publisher interface {
	Publish(event models.TaskEvent)
}

// Subscriber is the side the broadcaster sees. Subscribe returns an
// unsubscribe function.
type Subscriber interface {
	Subscribe(h Handler) (func(), error)
}

// PubSub is a full event transport.
type PubSub interface {
	Publisher
	Subscriber
}

const subscriberQueueSize = 64

// Bus is the in-process transport used for single-node deployments and
// tests. Each subscriber drains its own buffered queue on a dedicated
// goroutine, so publishing never blocks and every subscriber observes
// events in publish order. When a subscriber falls behind its queue,
// events are dropped for that subscriber only; delivery is best-effort.
type Bus struct {
	mu     sync.Mutex
	subs   map[int]chan models.TaskEvent
	nextID int
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan models.TaskEvent)}
}

func (b *Bus) Publish(event models.TaskEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subs {
		select {
		case ch <- event:
		default:
			logging.Logger.Warnf("Event ID: EVENT_DROPPED, Description: Subscriber %d queue full, dropping %s event for task %d", id, event.Kind, event.TaskID)
		}
	}
}

func (b *Bus) Subscribe(h Handler) (func(), error) {
	ch := make(chan models.TaskEvent, subscriberQueueSize)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for event := range ch {
			h(event)
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
			<-done
		})
	}
	return cancel, nil
}
