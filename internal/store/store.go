// Package store persists users, rooms, memberships and tasks with GORM.
package store

import (
	"context"

	"task-rooms-api/internal/models"
)

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// RoomStore persists rooms and their members. The unique index on the room
// code is the authority on uniqueness; CodeExists is only a pre-check.
type RoomStore interface {
	// CreateRoom inserts the room and records creatorID as its first member
	// in one transaction. Returns ErrRoomCodeExists on a code collision.
	CreateRoom(ctx context.Context, room *models.Room, creatorID uint) error
	GetRoomByCode(ctx context.Context, code string) (*models.Room, error)
	GetRoomByID(ctx context.Context, id uint) (*models.Room, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	// AddMember is idempotent.
	AddMember(ctx context.Context, roomID, userID uint) error
	IsMember(ctx context.Context, roomID, userID uint) (bool, error)
	ListMembers(ctx context.Context, roomID uint) ([]models.User, error)
}

// TaskFilter selects either a user's personal list (RoomID == models.NoRoom)
// or every task of a room.
type TaskFilter struct {
	UserID    uint
	RoomID    uint
	Page      int
	Limit     int
	Ascending bool
}

// TaskStore persists tasks.
type TaskStore interface {
	CreateTask(ctx context.Context, task *models.Task) error
	GetTask(ctx context.Context, id uint) (*models.Task, error)
	SaveTask(ctx context.Context, task *models.Task) error
	UpdateTaskStatus(ctx context.Context, id uint, status models.TaskStatus) error
	DeleteTask(ctx context.Context, id uint) error
	// ListTasks returns one page plus the total count for the filter.
	ListTasks(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error)
	CountByStatus(ctx context.Context, filter TaskFilter) (map[models.TaskStatus]int64, error)
}
