package server

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"house-dashboard/services"
)

const (
	wsWriteWait  = 10 * time.Second
	wsMaxMessage = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// wsReply answers one event. Error is set instead of Figure on rejection.
type wsReply struct {
	Control services.ControlID `json:"control"`
	Target  string             `json:"target,omitempty"`
	Figure  any                `json:"figure,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// handleWebSocket processes control events one at a time per connection, so
// replies arrive in the order the events were sent.
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("[ws] upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(wsMaxMessage)

	s.logger.Debug("[ws] client connected from %s", c.ClientIP())

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("[ws] read: %v", err)
			}
			return
		}

		reply := s.handleMessage(msg)

		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(reply); err != nil {
			s.logger.Warn("[ws] write: %v", err)
			return
		}
	}
}

func (s *Server) handleMessage(msg []byte) wsReply {
	var ev services.Event
	if err := json.Unmarshal(msg, &ev); err != nil {
		return wsReply{Error: "invalid event: " + err.Error()}
	}

	u, err := s.dispatcher.Dispatch(ev)
	s.metrics.observeEvent(string(ev.Control), err)
	if err != nil {
		return wsReply{Control: ev.Control, Error: err.Error()}
	}
	return wsReply{Control: u.Control, Target: u.Target, Figure: u.Figure}
}
