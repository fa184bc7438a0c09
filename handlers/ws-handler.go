package handlers

import (
	"net/http"

	"taskboard-service/broadcast"
	"taskboard-service/logging"

	"github.com/gorilla/websocket"
)

// WSHandler upgrades viewer connections and hands them to the hub.
type WSHandler struct {
	hub      *broadcast.Hub
	upgrader websocket.Upgrader
}

func NewWSHandler(hub *broadcast.Hub) *WSHandler {
	return &WSHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			// The gateway terminates origin policy; identity is already
			// checked by the auth middleware.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Serve keeps the connection open for the session's lifetime. Viewers
// only listen; the read loop exists to notice the disconnect and
// deregister the session. Missed events are not replayed — a
// reconnecting viewer re-fetches the task list.
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Logger.Warnf("Event ID: WS_UPGRADE_FAILED, Description: Websocket upgrade failed for user %d: %v", actor.ID, err)
		return
	}

	session := broadcast.NewSession(actor, conn)
	h.hub.Register(session)
	defer h.hub.Deregister(session)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
