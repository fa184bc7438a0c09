// Package broadcast fans committed task mutations out to connected
// viewer sessions. Delivery is best-effort and at-most-once: a session
// that falls behind loses events and must reconcile by re-fetching the
// task list, which is also how reconnecting viewers catch up.
package broadcast

import (
	"encoding/json"
	"sync"

	"taskboard-service/eventbus"
	"taskboard-service/logging"
	"taskboard-service/models"
)

// Hub is the session registry. Sessions register on connect and
// deregister on disconnect; every registered session receives every
// event. The hub does no visibility filtering — each viewer applies the
// access rules locally before surfacing an update, and the list fetch
// enforces the real boundary.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewHub() *Hub {
	return &Hub{sessions: make(map[string]*Session)}
}

// Start subscribes the hub to the event transport. The returned stop
// function unsubscribes and closes all sessions.
func (h *Hub) Start(bus eventbus.Subscriber) (func(), error) {
	unsubscribe, err := bus.Subscribe(h.dispatch)
	if err != nil {
		return nil, err
	}
	return func() {
		unsubscribe()
		h.closeAll()
	}, nil
}

// Register adds a session and starts its writer.
func (h *Hub) Register(s *Session) {
	h.mu.Lock()
	h.sessions[s.ID] = s
	h.mu.Unlock()

	go s.writeLoop()
	logging.Logger.Infof("Event ID: SESSION_REGISTERED, Description: Viewer session %s registered for user %d (%s)", s.ID, s.Actor.ID, s.Actor.Role)
}

// Deregister removes a session and stops its writer. Safe to call more
// than once for the same session.
func (h *Hub) Deregister(s *Session) {
	h.mu.Lock()
	_, ok := h.sessions[s.ID]
	delete(h.sessions, s.ID)
	h.mu.Unlock()

	if ok {
		s.stop()
		logging.Logger.Infof("Event ID: SESSION_DEREGISTERED, Description: Viewer session %s deregistered", s.ID)
	}
}

// SessionCount returns the number of connected sessions.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// dispatch hands one event to every session. Events reach each session
// queue in bus order and each queue drains sequentially, so a session
// never sees an update for a task before its creation. A full queue
// drops the event for that session only; nothing here blocks the
// mutating caller.
func (h *Hub) dispatch(event models.TaskEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		logging.Logger.Errorf("Event ID: BROADCAST_MARSHAL_FAILED, Description: Failed to marshal %s event for task %d: %v", event.Kind, event.TaskID, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, s := range h.sessions {
		if !s.enqueue(data) {
			logging.Logger.Warnf("Event ID: BROADCAST_DROPPED, Description: Session %s queue full, dropping %s event for task %d", s.ID, event.Kind, event.TaskID)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.sessions = make(map[string]*Session)
	h.mu.Unlock()

	for _, s := range sessions {
		s.stop()
	}
}
