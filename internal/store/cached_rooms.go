package store

import (
	"context"
	"time"

	"task-rooms-api/internal/cache"
	"task-rooms-api/internal/models"
)

const defaultRoomCacheEntries = 10000

// CachedRooms caches room-by-code lookups in front of a RoomStore. Rooms are
// never deleted, so a positive entry can only go stale by expiring; misses
// are not cached because the code may be created a moment later.
type CachedRooms struct {
	RoomStore
	rooms cache.Cache[string, models.Room]
	ttl   time.Duration
}

// NewCachedRooms wraps next. A ttl <= 0 keeps entries until evicted.
func NewCachedRooms(next RoomStore, ttl time.Duration) *CachedRooms {
	return &CachedRooms{
		RoomStore: next,
		rooms:     cache.NewSimpleCache[string, models.Room](cache.Options{MaxEntries: defaultRoomCacheEntries}),
		ttl:       ttl,
	}
}

func (c *CachedRooms) GetRoomByCode(ctx context.Context, code string) (*models.Room, error) {
	if room, ok := c.rooms.Get(code); ok {
		return &room, nil
	}
	room, err := c.RoomStore.GetRoomByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	c.rooms.Set(code, *room, c.ttl)
	return room, nil
}

func (c *CachedRooms) CodeExists(ctx context.Context, code string) (bool, error) {
	if _, ok := c.rooms.Get(code); ok {
		return true, nil
	}
	return c.RoomStore.CodeExists(ctx, code)
}

func (c *CachedRooms) CreateRoom(ctx context.Context, room *models.Room, creatorID uint) error {
	if err := c.RoomStore.CreateRoom(ctx, room, creatorID); err != nil {
		return err
	}
	c.rooms.Set(room.Code, *room, c.ttl)
	return nil
}

var _ RoomStore = (*CachedRooms)(nil)
