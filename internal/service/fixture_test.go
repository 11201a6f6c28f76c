package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"task-rooms-api/internal/logging"
	"task-rooms-api/internal/models"
	"task-rooms-api/internal/realtime"
	"task-rooms-api/internal/roomcode"
	"task-rooms-api/internal/store"
	"task-rooms-api/internal/testutil"
)

type fixture struct {
	store    *store.GormStore
	registry *realtime.Registry
	rooms    *RoomService
	tasks    *TaskService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)

	logger := logging.Discard()
	s := store.NewGormStore(db)
	registry := realtime.NewRegistry(logger)
	dispatcher := realtime.NewDispatcher(registry, logger)
	rooms := NewRoomService(s, roomcode.NewGenerator(s, 0), dispatcher, logger)

	return &fixture{
		store:    s,
		registry: registry,
		rooms:    rooms,
		tasks:    NewTaskService(s, rooms, dispatcher, logger),
	}
}

func (f *fixture) user(t *testing.T, id uint) *models.User {
	t.Helper()
	u := &models.User{ID: id, Name: fmt.Sprintf("User %d", id), Email: fmt.Sprintf("user%d@example.com", id)}
	require.NoError(t, f.store.CreateUser(context.Background(), u))
	return u
}

// room stores a room with a fixed code and the given members.
func (f *fixture) room(t *testing.T, code string, members ...uint) *models.Room {
	t.Helper()
	ctx := context.Background()
	room := &models.Room{Code: code}
	require.NoError(t, f.store.CreateRoom(ctx, room, members[0]))
	for _, m := range members[1:] {
		require.NoError(t, f.store.AddMember(ctx, room.ID, m))
	}
	return room
}

// listen admits a connection subscribed to channels, with the greeting
// already consumed.
func (f *fixture) listen(t *testing.T, channels ...string) *realtime.Conn {
	t.Helper()
	conn := realtime.NewConn(32)
	require.NoError(t, f.registry.Admit(conn))
	for _, name := range channels {
		require.NoError(t, f.registry.Join(conn, name))
	}
	drainFrames(t, conn)
	return conn
}

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func drainFrames(t *testing.T, conn *realtime.Conn) []frame {
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
