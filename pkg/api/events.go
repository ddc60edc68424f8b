package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/realtime"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// HandleEvents upgrades to a WebSocket, sends an init frame with the
// facade snapshot and then streams hub events as JSON. Clients may send
// ClientMessage frames to drive the facade.
func (s *Server) HandleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote an HTTP error.
		logger.Warnf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	session := uuid.NewString()
	id, events := s.hub.Register()
	defer s.hub.Unregister(id)

	logger.Debugf("session %s connected (%d listeners)", session, s.hub.Size())

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(InitMessage{Type: "init", Session: session, State: s.facade.Snapshot()}); err != nil {
		logger.Warnf("session %s: writing init: %v", session, err)
		return
	}

	done := make(chan struct{})
	go s.readLoop(conn, session, done)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			logger.Debugf("session %s disconnected", session)
			return
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				logger.Debugf("session %s: write failed: %v", session, err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (s *Server) readLoop(conn *websocket.Conn, session string, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(maxBodySize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debugf("session %s: read: %v", session, err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Debugf("session %s: ignoring malformed frame: %v", session, err)
			continue
		}
		s.dispatch(session, msg)
	}
}

func (s *Server) dispatch(session string, msg ClientMessage) {
	switch msg.Type {
	case "input":
		s.facade.OnInputChange(msg.Text)
	case "submit":
		s.facade.OnSubmit(msg.Text)
	case "select":
		item, _, err := s.lookup(msg.ItemType, msg.ID)
		if err != nil {
			logger.Debugf("session %s: select: %v", session, err)
			return
		}
		s.facade.OnSelectResult(item)
	case "select_recent":
		s.facade.OnSelectRecent(msg.Text)
	case "clear_recent":
		s.facade.OnClearRecent()
	default:
		logger.Debugf("session %s: unknown message type %q", session, msg.Type)
	}
}

// Hub returns the event hub the server streams from.
func (s *Server) Hub() *realtime.Hub {
	return s.hub
}
