package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait       = 10 * time.Second
	pongWait        = 60 * time.Second
	pingPeriod      = (pongWait * 9) / 10
	maxMsgSize      = 1 << 12 // 4 KB
	defaultInterval = 1 * time.Second
	maxInterval     = 10 * time.Second
)

// Envelope used for WebSocket messages.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// Upgrader for HTTP -> WebSocket. Consider tightening CheckOrigin in production.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origins for production
}

// wsConnect streams one vacuum's state at a client-chosen interval, e.g.
// GET /ws?vacuum_id=7&interval=2s. Clients watch a transition complete by
// observing the status settle.
func (h *Handler) wsConnect(c *gin.Context) {
	vacuumID, err := strconv.ParseInt(c.Query("vacuum_id"), 10, 64)
	if err != nil || vacuumID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or missing vacuum_id"})
		return
	}
	interval := h.parseInterval(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	// Configure read limits and pong handler to extend read deadline.
	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Reader goroutine to handle control frames and detect disconnects.
	done := make(chan struct{})
	go h.startReader(conn, done)

	ticker := time.NewTicker(interval)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ping.Stop()
	}()

	// Send initial state immediately.
	if err := h.sendVacuumState(c.Request.Context(), conn, vacuumID); err != nil {
		if h.log != nil {
			h.log.Infow("ws_write_failed_initial", "err", err, "vacuum_id", vacuumID)
		}
		return
	}

	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "err", err)
				}
				return
			}
		case <-ticker.C:
			if err := h.sendVacuumState(c.Request.Context(), conn, vacuumID); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "err", err, "vacuum_id", vacuumID)
				}
				return
			}
		}
	}
}

// Helper: parseInterval reads ?interval=2s with bounds.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 && d <= maxInterval {
			return d
		}
	}
	return defaultInterval
}

// Helper: startReader drains incoming messages to handle control frames and detect closure.
func (h *Handler) startReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if h.log != nil {
				h.log.Infow("ws_read_closed", "err", err)
			}
			return
		}
	}
}

// Helper: sendVacuumState fetches and writes the vacuum with a write deadline.
func (h *Handler) sendVacuumState(ctx context.Context, conn *websocket.Conn, vacuumID int64) error {
	env := wsEnvelope{Type: "vacuum_state"}
	v, err := h.services.Vacuums.Get(ctx, vacuumID)
	if err != nil {
		env.Type = "error"
		env.Error = "failed to load vacuum state"
		if h.log != nil {
			h.log.Errorw("ws_get_state_failed", "err", err, "vacuum_id", vacuumID)
		}
	} else {
		env.Data = v
	}

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(env)
}
