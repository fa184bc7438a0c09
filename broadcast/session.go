package broadcast

import (
	"sync"

	"taskboard-service/logging"
	"taskboard-service/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const sessionQueueSize = 32

// Conn is the slice of a websocket connection the session needs.
// *websocket.Conn satisfies it.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Session is one connected viewer. Writes go through a bounded queue
// drained by a single goroutine, which serializes frames per connection
// and keeps slow peers from blocking the broadcaster.
type Session struct {
	ID    string
	Actor models.Actor

	conn     Conn
	send     chan []byte
	done     chan struct{}
	stopOnce sync.Once
}

func NewSession(actor models.Actor, conn Conn) *Session {
	return &Session{
		ID:    uuid.New().String(),
		Actor: actor,
		conn:  conn,
		send:  make(chan []byte, sessionQueueSize),
		done:  make(chan struct{}),
	}
}

// enqueue offers data to the session queue without blocking. Reports
// whether the data was accepted.
func (s *Session) enqueue(data []byte) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.send <- data:
		return true
	default:
		return false
	}
}

func (s *Session) writeLoop() {
	for {
		select {
		case <-s.done:
			return
		case data := <-s.send:
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				logging.Logger.Warnf("Event ID: SESSION_WRITE_FAILED, Description: Write to session %s failed: %v", s.ID, err)
				s.stop()
				return
			}
		}
	}
}

func (s *Session) stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}
