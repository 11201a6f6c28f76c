package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"task-rooms-api/internal/config"
	"task-rooms-api/internal/middleware"
	"task-rooms-api/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WebSocketHandler upgrades /ws requests and pumps frames between the socket
// and the registry. Identity is established in-band with an authenticate
// message, so the upgrade itself is unauthenticated.
type WebSocketHandler struct {
	registry *realtime.Registry
	router   *realtime.Router
	cfg      config.RealtimeConfig
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

func NewWebSocketHandler(registry *realtime.Registry, router *realtime.Router, cfg config.RealtimeConfig, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		registry: registry,
		router:   router,
		cfg:      cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger.With("component", "ws"),
	}
}

// originChecker allows requests without an Origin header (non-browser
// clients) and browser requests the policy allows.
func originChecker(allowed []string) func(r *http.Request) bool {
	policy := middleware.NewOriginPolicy(allowed)
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || policy.Allows(origin)
	}
}

// Serve handles GET /ws
func (h *WebSocketHandler) Serve(c *gin.Context) {
	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader has already answered the request
		h.logger.Warn("websocket upgrade failed", "error", err, "remote_addr", c.ClientIP())
		return
	}

	conn := realtime.NewConn(h.cfg.SendBuffer)
	if err := h.registry.Admit(conn); err != nil {
		deadline := time.Now().Add(h.cfg.WriteTimeout)
		_ = ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"), deadline)
		_ = ws.Close()
		return
	}
	logger := h.logger.With("conn_id", conn.ID(), "remote_addr", c.ClientIP())
	logger.Info("websocket connected")

	written := make(chan struct{})
	go func() {
		defer close(written)
		h.writePump(ws, conn, logger)
	}()

	h.readPump(c.Request.Context(), ws, conn, logger)
	h.registry.Disconnect(conn)
	<-written
	logger.Info("websocket disconnected")
}

func (h *WebSocketHandler) readPump(ctx context.Context, ws *websocket.Conn, conn *realtime.Conn, logger *slog.Logger) {
	ws.SetReadLimit(h.cfg.MaxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))
	})

	limiter := realtime.NewRateLimiter(h.cfg.RateBurst, h.cfg.RateInterval)
	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("websocket read ended", "error", err)
			}
			return
		}
		if !limiter.Allow() {
			logger.Warn("rate limit exceeded, discarding message", "burst", h.cfg.RateBurst, "interval", h.cfg.RateInterval)
			h.registry.Send(conn, realtime.Envelope{
				Event: realtime.EventError,
				Data:  realtime.ErrorMessage{Message: "Rate limit exceeded"},
			})
			continue
		}
		h.router.Handle(ctx, conn, raw)
	}
}

func (h *WebSocketHandler) writePump(ws *websocket.Conn, conn *realtime.Conn, logger *slog.Logger) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		_ = ws.Close()
	}()

	for {
		select {
		case frame, ok := <-conn.Outbound():
			_ = ws.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if !ok {
				// registry closed the queue
				_ = ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := ws.WriteMessage(websocket.TextMessage, frame); err != nil {
				logger.Debug("websocket write failed", "error", err)
				return
			}
		case <-ticker.C:
			_ = ws.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Debug("websocket ping failed", "error", err)
				return
			}
		}
	}
}
