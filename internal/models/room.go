package models

import "time"

// Room is a collaboration space addressed by a unique six-character code.
// Autoincrement ids start at 1, so a real room never has id 0.
type Room struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Code      string    `json:"code" gorm:"size:6;uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for Room Model
func (Room) TableName() string {
	return "rooms"
}

// RoomMember records that a user created or joined a room.
type RoomMember struct {
	ID       uint      `json:"-" gorm:"primaryKey"`
	RoomID   uint      `json:"room_id" gorm:"not null;uniqueIndex:idx_room_user"`
	UserID   uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_room_user;index"`
	JoinedAt time.Time `json:"joined_at" gorm:"autoCreateTime"`
	Room     Room      `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	User     User      `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for RoomMember Model
func (RoomMember) TableName() string {
	return "room_members"
}
