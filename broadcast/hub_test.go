package broadcast

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"taskboard-service/eventbus"
	"taskboard-service/models"
)

// fakeConn records frames written to it.
type fakeConn struct {
	mu     sync.Mutex
	frames [][]byte
	failAt int // fail the nth write (1-based), 0 = never
	writes int
	closed bool
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes++
	if c.failAt != 0 && c.writes >= c.failAt {
		return errors.New("broken pipe")
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	c.frames = append(c.frames, buf)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) events(t *testing.T) []models.TaskEvent {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.TaskEvent, 0, len(c.frames))
	for _, frame := range c.frames {
		var event models.TaskEvent
		if err := json.Unmarshal(frame, &event); err != nil {
			t.Fatalf("session received malformed frame %q: %v", frame, err)
		}
		out = append(out, event)
	}
	return out
}

func (c *fakeConn) waitForFrames(t *testing.T, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		got := len(c.frames)
		c.mu.Unlock()
		if got >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d frames", n)
}

func startHub(t *testing.T) (*Hub, *eventbus.Bus) {
	t.Helper()
	hub := NewHub()
	bus := eventbus.NewBus()
	stop, err := hub.Start(bus)
	if err != nil {
		t.Fatalf("Start() unexpected error: %v", err)
	}
	t.Cleanup(stop)
	return hub, bus
}

func TestHubBroadcastsToAllSessions(t *testing.T) {
	hub, bus := startHub(t)

	manager := &fakeConn{}
	employee := &fakeConn{}
	hub.Register(NewSession(models.Actor{ID: 1, Role: models.RoleManager}, manager))
	hub.Register(NewSession(models.Actor{ID: 2, Role: models.RoleEmployee}, employee))

	task := &models.Task{ID: 42, Title: "Report", Status: models.StatusPending}
	bus.Publish(models.NewTaskCreatedEvent(task))

	for _, conn := range []*fakeConn{manager, employee} {
		conn.waitForFrames(t, 1)
		events := conn.events(t)
		if events[0].Kind != models.EventTaskCreated || events[0].Task == nil || events[0].Task.ID != 42 {
			t.Errorf("session got %+v, want created event for task 42", events[0])
		}
	}
}

func TestHubPreservesOrderPerSession(t *testing.T) {
	hub, bus := startHub(t)

	conn := &fakeConn{}
	hub.Register(NewSession(models.Actor{ID: 1, Role: models.RoleManager}, conn))

	task := &models.Task{ID: 5, Title: "Report", Status: models.StatusPending}
	bus.Publish(models.NewTaskCreatedEvent(task))
	bus.Publish(models.NewTaskUpdatedEvent(task))
	bus.Publish(models.NewTaskDeletedEvent(task.ID))

	conn.waitForFrames(t, 3)
	events := conn.events(t)
	want := []models.EventKind{models.EventTaskCreated, models.EventTaskUpdated, models.EventTaskDeleted}
	for i, kind := range want {
		if events[i].Kind != kind {
			t.Fatalf("event %d = %s, want %s (a session must never see an update before the create)", i, events[i].Kind, kind)
		}
	}
}

func TestHubDeregisterStopsDelivery(t *testing.T) {
	hub, bus := startHub(t)

	conn := &fakeConn{}
	session := NewSession(models.Actor{ID: 1, Role: models.RoleManager}, conn)
	hub.Register(session)
	hub.Deregister(session)

	if hub.SessionCount() != 0 {
		t.Fatalf("SessionCount() = %d after deregister, want 0", hub.SessionCount())
	}

	bus.Publish(models.NewTaskDeletedEvent(9))
	time.Sleep(50 * time.Millisecond)

	if got := len(conn.events(t)); got != 0 {
		t.Errorf("deregistered session received %d events", got)
	}
	conn.mu.Lock()
	defer conn.mu.Unlock()
	if !conn.closed {
		t.Error("deregister should close the connection")
	}
}

func TestHubFailedWriteDoesNotAffectOtherSessions(t *testing.T) {
	hub, bus := startHub(t)

	broken := &fakeConn{failAt: 1}
	healthy := &fakeConn{}
	hub.Register(NewSession(models.Actor{ID: 1, Role: models.RoleManager}, broken))
	hub.Register(NewSession(models.Actor{ID: 2, Role: models.RoleEmployee}, healthy))

	bus.Publish(models.NewTaskDeletedEvent(1))
	bus.Publish(models.NewTaskDeletedEvent(2))

	healthy.waitForFrames(t, 2)
	events := healthy.events(t)
	if events[0].TaskID != 1 || events[1].TaskID != 2 {
		t.Errorf("healthy session got %+v", events)
	}
}
