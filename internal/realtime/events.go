package realtime

import (
	"encoding/json"
	"time"
)

// Event names carried in the envelope "event" field.
const (
	EventConnected     = "connected"
	EventAuthenticate  = "authenticate"
	EventAuthenticated = "authenticated"
	EventJoinRoom      = "join_room"
	EventLeaveRoom     = "leave_room"
	EventRoomMessage   = "room_message"
	EventTaskUpdate    = "task_update"
	EventRoomUpdate    = "room_update"
	EventRoomCreated   = "room_created"
	EventError         = "error"
)

// Envelope is the outbound frame written to clients.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// InboundMessage is a frame received from a client. Data is decoded once the
// event name is known.
type InboundMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// AuthenticatePayload accepts the token under either key.
type AuthenticatePayload struct {
	Credential string `json:"credential"`
	Token      string `json:"token"`
}

// Value returns Credential, falling back to Token.
func (p AuthenticatePayload) Value() string {
	if p.Credential != "" {
		return p.Credential
	}
	return p.Token
}

// RoomPayload is the data of join_room and leave_room.
type RoomPayload struct {
	RoomCode string `json:"room_code" validate:"required,len=6,alphanum,uppercase"`
}

type Connected struct {
	Message string `json:"message"`
}

type Authenticated struct {
	Success bool   `json:"success"`
	UserID  *uint  `json:"user_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

type RoomMessage struct {
	Message string `json:"message"`
}

// TaskSnapshot is the task representation pushed to clients.
type TaskSnapshot struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	UserID      uint   `json:"user_id"`
	RoomID      uint   `json:"room_id"`
}

type TaskUpdate struct {
	Action    Action       `json:"action"`
	Task      TaskSnapshot `json:"task"`
	Timestamp string       `json:"timestamp"`
}

type RoomUpdate struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type RoomCreated struct {
	Code string `json:"code"`
}

type ErrorMessage struct {
	Message string `json:"message"`
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
