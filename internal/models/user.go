package models

import "time"

// User represents a registered account. Password holds a bcrypt digest and
// is empty for accounts created through Google login.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:100"`
	Email     string    `json:"email" gorm:"size:100;uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"size:100"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for User Model
func (User) TableName() string {
	return "users"
}

// HasPassword reports whether the account can log in with a password.
func (u User) HasPassword() bool {
	return u.Password != ""
}
