package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/coderunr/judge/internal/types"
)

// Message types exchanged on /api/v2/connect
const (
	MessageInit    = "init"
	MessageResult  = "result"
	MessageVerdict = "verdict"
	MessageError   = "error"
)

const (
	initTimeout  = 5 * time.Second
	writeTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// streamConn is one websocket client validating a single submission
type streamConn struct {
	conn   *websocket.Conn
	logger *logrus.Entry
	mutex  sync.Mutex
	closed bool
}

// HandleWebSocket streams per-test-case results of a validation
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Error("WebSocket upgrade failed")
		return
	}

	sc := &streamConn{
		conn:   conn,
		logger: h.logger.WithField("component", "websocket"),
	}
	defer sc.close(websocket.CloseNormalClosure, "Validation completed")

	_ = conn.SetReadDeadline(time.Now().Add(initTimeout))
	var msg types.WebSocketMessage
	if err := conn.ReadJSON(&msg); err != nil {
		sc.logger.WithError(err).Debug("No init message received")
		sc.sendError("Initialization timeout")
		return
	}
	if msg.Type != MessageInit {
		sc.sendError("Unknown message type: " + msg.Type)
		return
	}

	var request types.ValidateRequest
	if err := json.Unmarshal(msg.Payload, &request); err != nil {
		sc.sendError("Invalid validate request")
		return
	}
	sub, err := h.submission(&request)
	if err != nil {
		sc.sendError(err.Error())
		return
	}

	// A client that goes away cancels the remaining test cases.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go sc.watch(cancel)

	verdict := h.validator.Stream(ctx, sub, func(result types.ValidationResult) {
		sc.send(MessageResult, result)
	})
	sc.send(MessageVerdict, verdict)
}

// watch drains client frames until the connection drops
func (sc *streamConn) watch(cancel context.CancelFunc) {
	_ = sc.conn.SetReadDeadline(time.Time{})
	for {
		if _, _, err := sc.conn.ReadMessage(); err != nil {
			cancel()
			return
		}
	}
}

// send writes a typed message with payload
func (sc *streamConn) send(kind string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		sc.logger.WithError(err).Error("Failed to encode WebSocket payload")
		return
	}
	sc.write(types.WebSocketMessage{Type: kind, Payload: data})
}

// sendError sends an error message
func (sc *streamConn) sendError(message string) {
	sc.write(types.WebSocketMessage{Type: MessageError, Error: message})
}

func (sc *streamConn) write(msg types.WebSocketMessage) {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()
	if sc.closed {
		return
	}

	_ = sc.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := sc.conn.WriteJSON(msg); err != nil {
		sc.logger.WithError(err).Error("Failed to send WebSocket message")
	}
}

// close closes the WebSocket connection
func (sc *streamConn) close(code int, message string) {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()

	if sc.closed {
		return
	}
	sc.closed = true

	_ = sc.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, message),
		time.Now().Add(time.Second))
	_ = sc.conn.Close()
}
