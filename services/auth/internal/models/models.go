package models

import (
	"time"

	"github.com/Skotchmaster/delivery_platform/pkg/tokens"
)

// User is never hard-deleted: deactivated users keep their email and
// username reserved.
type User struct {
	ID           string      `gorm:"type:varchar(36);primaryKey"`
	Email        string      `gorm:"size:255;uniqueIndex;not null"`
	Username     string      `gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string      `gorm:"size:255;not null"`
	FullName     *string     `gorm:"size:255"`
	Role         tokens.Role `gorm:"size:20;not null"`
	IsActive     bool        `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLogin    *time.Time
}

func (User) TableName() string { return "users" }

type RevokedToken struct {
	ID        string    `gorm:"type:varchar(36);primaryKey"`
	Token     string    `gorm:"type:text;uniqueIndex;not null"`
	RevokedAt time.Time `gorm:"not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
}

func (RevokedToken) TableName() string { return "token_blacklist" }

// PublicUser is the only user shape that leaves the service.
type PublicUser struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	Username  string      `json:"username"`
	FullName  *string     `json:"full_name"`
	Role      tokens.Role `json:"role"`
	IsActive  bool        `json:"is_active"`
	CreatedAt time.Time   `json:"created_at"`
}

func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FullName:  u.FullName,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

func All() []any {
	return []any{&User{}, &RevokedToken{}}
}
