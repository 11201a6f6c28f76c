package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"task-rooms-api/internal/auth"
	"task-rooms-api/internal/logging"
)

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// drain returns every frame currently queued on conn.
func drain(t *testing.T, conn *Conn) []frame {
	t.Helper()
	var out []frame
	for {
		select {
		case raw, ok := <-conn.Outbound():
			if !ok {
				return out
			}
			var f frame
			require.NoError(t, json.Unmarshal(raw, &f))
			out = append(out, f)
		default:
			return out
		}
	}
}

func eventsOf(frames []frame, name string) []frame {
	var out []frame
	for _, f := range frames {
		if f.Event == name {
			out = append(out, f)
		}
	}
	return out
}

func decodeData[T any](t *testing.T, f frame) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(f.Data, &v))
	return v
}

// fakeVerifier maps literal tokens to users.
type fakeVerifier map[string]uint

func (f fakeVerifier) VerifyToken(token string) (uint, error) {
	switch token {
	case "expired":
		return 0, auth.ErrExpiredToken
	case "garbage":
		return 0, auth.ErrMalformedToken
	}
	if id, ok := f[token]; ok {
		return id, nil
	}
	return 0, auth.ErrInvalidToken
}

// memberRooms grants access to the listed (user, room) pairs.
type memberRooms map[uint][]string

var errNotMember = errors.New("not a member")

func (m memberRooms) CanAccess(_ context.Context, userID uint, code string) error {
	for _, c := range m[userID] {
		if c == code {
			return nil
		}
	}
	return errNotMember
}

type harness struct {
	registry   *Registry
	binder     *Binder
	dispatcher *Dispatcher
	router     *Router
}

func newHarness(rooms memberRooms) *harness {
	logger := logging.Discard()
	registry := NewRegistry(logger)
	binder := NewBinder(registry, fakeVerifier{"tok-for-user-7": 7, "tok-for-user-8": 8, "tok-for-user-9": 9}, logger)
	return &harness{
		registry:   registry,
		binder:     binder,
		dispatcher: NewDispatcher(registry, logger),
		router:     NewRouter(registry, binder, rooms, logger),
	}
}

func (h *harness) connect(t *testing.T) *Conn {
	t.Helper()
	conn := NewConn(64)
	require.NoError(t, h.registry.Admit(conn))
	return conn
}

func (h *harness) send(conn *Conn, event string, data any) {
	raw, _ := json.Marshal(map[string]any{"event": event, "data": data})
	h.router.Handle(context.Background(), conn, raw)
}
