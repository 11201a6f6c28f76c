package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"task-rooms-api/internal/roomcode"
)

// RoomAuthorizer decides whether a user may subscribe to a room channel.
type RoomAuthorizer interface {
	CanAccess(ctx context.Context, userID uint, code string) error
}

// Router handles the frames a client sends over its connection.
type Router struct {
	registry *Registry
	binder   *Binder
	rooms    RoomAuthorizer
	validate *validator.Validate
	logger   *slog.Logger
}

func NewRouter(registry *Registry, binder *Binder, rooms RoomAuthorizer, logger *slog.Logger) *Router {
	return &Router{
		registry: registry,
		binder:   binder,
		rooms:    rooms,
		validate: validator.New(),
		logger:   logger.With("component", "router"),
	}
}

// Handle decodes one inbound frame from conn and acts on it. Rejected frames
// are answered with an error event to conn alone.
func (rt *Router) Handle(ctx context.Context, conn *Conn, raw []byte) {
	var msg InboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil || msg.Event == "" {
		rt.fail(conn, "Invalid message format")
		return
	}

	switch msg.Event {
	case EventAuthenticate:
		var p AuthenticatePayload
		if !rt.decode(conn, msg.Data, &p) {
			return
		}
		// the acknowledgment is sent by the binder
		_, _ = rt.binder.Authenticate(conn, p.Value())
	case EventJoinRoom:
		rt.joinRoom(ctx, conn, msg.Data)
	case EventLeaveRoom:
		rt.leaveRoom(conn, msg.Data)
	default:
		rt.fail(conn, fmt.Sprintf("Unknown event %q", msg.Event))
	}
}

func (rt *Router) joinRoom(ctx context.Context, conn *Conn, data json.RawMessage) {
	userID, ok := rt.requireUser(conn)
	if !ok {
		return
	}
	code, ok := rt.roomCode(conn, data)
	if !ok {
		return
	}
	if err := rt.rooms.CanAccess(ctx, userID, code); err != nil {
		rt.logger.Info("room join refused", "conn_id", conn.ID(), "user_id", userID, "room", code, "error", err)
		rt.fail(conn, fmt.Sprintf("Cannot join room %s", code))
		return
	}
	if rt.registry.IsMember(conn, code) {
		return
	}
	if err := rt.registry.Join(conn, code); err != nil {
		rt.logger.Warn("room join on closed connection", "conn_id", conn.ID(), "error", err)
		return
	}
	rt.registry.Broadcast(code, Envelope{
		Event: EventRoomMessage,
		Data:  RoomMessage{Message: fmt.Sprintf("User %d joined room %s", userID, code)},
	})
}

func (rt *Router) leaveRoom(conn *Conn, data json.RawMessage) {
	userID, ok := rt.requireUser(conn)
	if !ok {
		return
	}
	code, ok := rt.roomCode(conn, data)
	if !ok {
		return
	}
	if !rt.registry.Leave(conn, code) {
		rt.fail(conn, fmt.Sprintf("Not in room %s", code))
		return
	}
	rt.registry.Broadcast(code, Envelope{
		Event: EventRoomMessage,
		Data:  RoomMessage{Message: fmt.Sprintf("User %d left room %s", userID, code)},
	})
}

func (rt *Router) requireUser(conn *Conn) (uint, bool) {
	userID, ok := conn.UserID()
	if !ok {
		rt.fail(conn, "Authentication required")
	}
	return userID, ok
}

func (rt *Router) roomCode(conn *Conn, data json.RawMessage) (string, bool) {
	var p RoomPayload
	if !rt.decode(conn, data, &p) {
		return "", false
	}
	p.RoomCode = roomcode.Normalize(p.RoomCode)
	if err := rt.validate.Struct(p); err != nil {
		rt.fail(conn, "Invalid room code")
		return "", false
	}
	return p.RoomCode, true
}

func (rt *Router) decode(conn *Conn, data json.RawMessage, v any) bool {
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}
	if err := json.Unmarshal(data, v); err != nil {
		rt.fail(conn, "Invalid message payload")
		return false
	}
	return true
}

func (rt *Router) fail(conn *Conn, message string) {
	rt.registry.Send(conn, Envelope{Event: EventError, Data: ErrorMessage{Message: message}})
}
