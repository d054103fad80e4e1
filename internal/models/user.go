package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the credential record: identity fields plus the single
// refresh-token slot. The slot is the sole source of truth for which
// refresh token is currently valid for this user; it is mutated only by
// the session subsystem (login overwrites, refresh swaps, logout clears).
type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	FullName     string    `gorm:"size:255" json:"fullName"`
	Password     string    `gorm:"size:255;not null" json:"-"`
	RefreshToken *string   `gorm:"size:1024" json:"-"` // nil when no live session
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
