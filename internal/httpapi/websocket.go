package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     sameOrigin,
}

// handleWS pushes the current view on connect and again after every
// controller event.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sub := s.hub.subscribe()
	defer s.hub.unsubscribe(sub)
	s.log.Debug().Str("remote", r.RemoteAddr).Msg("websocket connected")

	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	if err := s.pushView(conn); err != nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			s.log.Debug().Str("remote", r.RemoteAddr).Msg("websocket disconnected")
			return
		case <-sub:
			if err := s.pushView(conn); err != nil {
				s.log.Debug().Err(err).Msg("websocket write failed")
				return
			}
		}
	}
}

func (s *Server) pushView(conn *websocket.Conn) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(s.ctrl.View())
}
