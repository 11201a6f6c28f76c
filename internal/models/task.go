package models

import (
	"strings"
	"time"
)

// TaskStatus represents the status of a task
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "inProgress"
	StatusDone       TaskStatus = "done"
)

// NoRoom is the RoomID of a task on its owner's personal list.
const NoRoom uint = 0

// ParseTaskStatus accepts the canonical names case-insensitively, plus the
// legacy "in progress"/"in_progress" spellings.
func ParseTaskStatus(s string) (TaskStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "todo", "not started":
		return StatusTodo, true
	case "inprogress", "in progress", "in_progress":
		return StatusInProgress, true
	case "done", "completed":
		return StatusDone, true
	default:
		return "", false
	}
}

// Task represents a task either on a user's personal list (RoomID == NoRoom)
// or shared in a room.
type Task struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Title       string     `json:"title" gorm:"size:200;not null"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status" gorm:"size:20;not null;default:'todo'"`
	UserID      uint       `json:"user_id" gorm:"not null;index"`
	RoomID      uint       `json:"room_id" gorm:"not null;default:0;index"`
	User        User       `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName specifies the table name for Task Model
func (Task) TableName() string {
	return "tasks"
}

// IsPersonal reports whether the task lives on its owner's personal list.
func (t Task) IsPersonal() bool {
	return t.RoomID == NoRoom
}
