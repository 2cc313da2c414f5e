package server

import (
	"bytes"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	apperrors "github.com/creditdesk/lineageflow/pkg/errors"
	"github.com/creditdesk/lineageflow/pkg/lineage"
)

const streamWriteTimeout = 10 * time.Second

// streamConn serializes writes to a websocket. gorilla/websocket allows one
// concurrent writer; the reply loop and the shutdown watcher both write.
type streamConn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *streamConn) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
	return c.ws.WriteJSON(v)
}

func (c *streamConn) close(code int, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg := websocket.FormatCloseMessage(code, text)
	_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	_ = c.ws.Close()
}

// handleStream lays out every graph received on the websocket and replies
// with the positioned graph or an error object, in message order.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ws, err := s.upgrader.Upgrade(w, r, http.Header{RequestIDHeader: {RequestIDFrom(r.Context())}})
	if err != nil {
		// Upgrade has already written the HTTP error.
		s.logger.Debug("websocket upgrade failed", "err", err)
		return
	}
	ws.SetReadLimit(MaxBodySize)

	conn := &streamConn{ws: ws}
	session := uuid.NewString()
	logger := s.logger.With("session", session, "request_id", RequestIDFrom(r.Context()))
	logger.Debug("stream opened")

	ctx := r.Context()
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.close(websocket.CloseGoingAway, "server shutting down")
		case <-done:
		}
	}()

	for {
		kind, data, err := ws.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("stream read ended", "err", err)
			}
			_ = ws.Close()
			return
		}
		if kind != websocket.TextMessage {
			err := apperrors.New(apperrors.ErrCodeInvalidInput, "only text messages are accepted")
			if conn.writeJSON(errorResponse(ctx, err)) != nil {
				return
			}
			continue
		}

		var reply any
		g, err := lineage.ReadGraph(bytes.NewReader(data))
		if err != nil {
			err = apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "message is not a valid graph")
		} else {
			reply, err = s.runner.Layout(ctx, g, opts)
		}
		if err != nil {
			reply = errorResponse(ctx, err)
		}
		if err := conn.writeJSON(reply); err != nil {
			logger.Debug("stream write failed", "err", err)
			return
		}
	}
}
