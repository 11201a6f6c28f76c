package realtime

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-rooms-api/internal/logging"
)

func TestRegistry_AdmitGreetsOnlyNewConnection(t *testing.T) {
	r := NewRegistry(logging.Discard())
	first := NewConn(8)
	require.NoError(t, r.Admit(first))
	drain(t, first)

	second := NewConn(8)
	require.NoError(t, r.Admit(second))

	frames := drain(t, second)
	require.Len(t, frames, 1)
	assert.Equal(t, EventConnected, frames[0].Event)
	assert.Equal(t, "Connected to server", decodeData[Connected](t, frames[0]).Message)
	assert.Empty(t, drain(t, first))
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_JoinBroadcastLeave(t *testing.T) {
	r := NewRegistry(logging.Discard())
	conn := NewConn(8)
	require.NoError(t, r.Admit(conn))
	drain(t, conn)

	require.NoError(t, r.Join(conn, "AB12CD"))
	assert.True(t, r.IsMember(conn, "AB12CD"))
	assert.Equal(t, 1, r.Broadcast("AB12CD", Envelope{Event: EventRoomMessage, Data: RoomMessage{Message: "hi"}}))
	require.Len(t, drain(t, conn), 1)

	assert.True(t, r.Leave(conn, "AB12CD"))
	assert.False(t, r.Leave(conn, "AB12CD"))
	assert.Equal(t, 0, r.Broadcast("AB12CD", Envelope{Event: EventRoomMessage, Data: RoomMessage{Message: "gone"}}))
	assert.Empty(t, drain(t, conn))
	assert.Nil(t, r.Members("AB12CD"))
}

func TestRegistry_JoinUnknownConnection(t *testing.T) {
	r := NewRegistry(logging.Discard())
	require.ErrorIs(t, r.Join(NewConn(1), "AB12CD"), ErrUnknownConn)
}

func TestRegistry_DisconnectRemovesEverySubscription(t *testing.T) {
	r := NewRegistry(logging.Discard())
	conn := NewConn(8)
	other := NewConn(8)
	require.NoError(t, r.Admit(conn))
	require.NoError(t, r.Admit(other))

	for _, name := range []string{"user_7", "AB12CD", "ZZ99ZZ"} {
		require.NoError(t, r.Join(conn, name))
	}
	require.NoError(t, r.Join(other, "AB12CD"))
	assert.Equal(t, []string{"AB12CD", "ZZ99ZZ", "user_7"}, r.ChannelsOf(conn))

	r.Disconnect(conn)
	assert.Empty(t, r.ChannelsOf(conn))
	assert.Nil(t, r.Members("user_7"))
	assert.Nil(t, r.Members("ZZ99ZZ"))
	assert.Equal(t, []uuid.UUID{other.ID()}, r.Members("AB12CD"))
	assert.Equal(t, 1, r.Len())

	require.NotPanics(t, func() { r.Disconnect(conn) })
	assert.Equal(t, 1, r.Len())

	drain(t, conn)
	_, open := <-conn.Outbound()
	assert.False(t, open)
	require.ErrorIs(t, r.Join(conn, "AB12CD"), ErrUnknownConn)
}

func TestRegistry_FullQueueDropsOnlyForThatConnection(t *testing.T) {
	r := NewRegistry(logging.Discard())
	slow := NewConn(1)
	fast := NewConn(16)
	require.NoError(t, r.Admit(slow))
	require.NoError(t, r.Admit(fast))
	drain(t, fast)
	// slow's single slot is occupied by the connected greeting
	require.NoError(t, r.Join(slow, "AB12CD"))
	require.NoError(t, r.Join(fast, "AB12CD"))

	n := r.Broadcast("AB12CD", Envelope{Event: EventRoomMessage, Data: RoomMessage{Message: "x"}})
	assert.Equal(t, 1, n)
	assert.Len(t, drain(t, fast), 1)
	assert.Len(t, drain(t, slow), 1)
}

func TestRegistry_Shutdown(t *testing.T) {
	r := NewRegistry(logging.Discard())
	conn := NewConn(8)
	require.NoError(t, r.Admit(conn))
	require.NoError(t, r.Join(conn, "user_1"))

	r.Shutdown()
	assert.Equal(t, 0, r.Len())
	assert.Nil(t, r.Members("user_1"))
	require.ErrorIs(t, r.Admit(NewConn(1)), ErrRegistryClosed)

	drain(t, conn)
	_, open := <-conn.Outbound()
	assert.False(t, open)
}

func TestRegistry_PerChannelOrderingUnderConcurrentPublishers(t *testing.T) {
	const publishers, perPublisher = 4, 50

	r := NewRegistry(logging.Discard())
	subscribers := []*Conn{NewConn(512), NewConn(512), NewConn(512)}
	for _, c := range subscribers {
		require.NoError(t, r.Admit(c))
		drain(t, c)
		require.NoError(t, r.Join(c, "AB12CD"))
	}

	var wg sync.WaitGroup
	for p := 0; p < publishers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perPublisher; i++ {
				msg := fmt.Sprintf("%d-%d", p, i)
				r.Broadcast("AB12CD", Envelope{Event: EventRoomMessage, Data: RoomMessage{Message: msg}})
			}
		}(p)
	}
	wg.Wait()

	var reference []string
	for i, c := range subscribers {
		var seen []string
		for _, f := range drain(t, c) {
			seen = append(seen, decodeData[RoomMessage](t, f).Message)
		}
		require.Len(t, seen, publishers*perPublisher)
		if i == 0 {
			reference = seen
			continue
		}
		assert.Equal(t, reference, seen)
	}
}
