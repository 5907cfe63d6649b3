package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/matzehuels/codegraph/pkg/workspace"
)

const (
	eventsWriteWait = 10 * time.Second
	eventsPongWait  = 60 * time.Second
	eventsPingEvery = (eventsPongWait * 9) / 10
)

func (s *Server) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.allowedOrigin,
	}
}

// allowedOrigin applies the CORS origin list to websocket handshakes.
// Requests without an Origin header are not from a browser and pass.
func (s *Server) allowedOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range s.origins {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

// eventMessage is one websocket frame of GET /api/events.
type eventMessage struct {
	Type   string            `json:"type"`
	Notice *workspace.Notice `json:"notice,omitempty"`
	// Generation is sent with the "subscribed" frame so clients can tell
	// which rebuild the current state belongs to.
	Generation uint64 `json:"generation,omitempty"`
}

// events handles GET /api/events: a websocket stream of workspace notices.
// Clients only read; incoming messages are discarded.
func (s *Server) events(w http.ResponseWriter, r *http.Request) {
	upgrader := s.upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	notices, unsubscribe := s.ws.Subscribe(0)
	defer unsubscribe()
	s.logger.Debug("events subscriber connected", "subscribers", s.ws.Subscribers())

	// The read loop only services pongs and detects closed connections.
	_ = conn.SetReadDeadline(time.Now().Add(eventsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(eventsPongWait))
	})
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	if err := writeEvent(conn, eventMessage{Type: "subscribed", Generation: s.ws.Generation()}); err != nil {
		return
	}

	ticker := time.NewTicker(eventsPingEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(eventsWriteWait))
			return
		case n, ok := <-notices:
			if !ok {
				return
			}
			if err := writeEvent(conn, eventMessage{Type: "notice", Notice: &n}); err != nil {
				s.logger.Debug("events write failed", "error", err)
				return
			}
		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(eventsWriteWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func writeEvent(conn *websocket.Conn, msg eventMessage) error {
	if err := conn.SetWriteDeadline(time.Now().Add(eventsWriteWait)); err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}
