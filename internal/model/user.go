package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var Themes = []string{"light", "dark", "system"}

// User is the identity and credential record. Everything credential related is
// hidden from JSON, outward responses should go through Public.
type User struct {
	ID    string `gorm:"primaryKey;size:16"`
	Email string `gorm:"uniqueIndex;not null"`
	Name  string `gorm:"size:50;not null"`

	PasswordHash    string `gorm:"not null" json:"-"`
	PasswordVersion int    `gorm:"not null;default:0" json:"-"`

	FailedLoginAttempts int        `gorm:"not null;default:0" json:"-"`
	LockUntil           *time.Time `json:"-"`

	// SHA-256 digest of the raw reset token, never the token itself
	ResetTokenHash   *string    `gorm:"uniqueIndex" json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`

	// Bumped on every lockout transition, used as a compare-and-swap guard
	Revision int64 `gorm:"not null;default:0" json:"-"`

	Avatar string `gorm:"default:''"`
	Role   string `gorm:"default:user"`
	Theme  string `gorm:"default:system"`

	LastLogin *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Tasks []Task `gorm:"foreignKey:UserID" json:"-"`
}

// LockoutState is the part of a user that the lockout policy reads and writes
type LockoutState struct {
	FailedAttempts int
	LockUntil      *time.Time
}

func (u *User) Lockout() LockoutState {
	return LockoutState{
		FailedAttempts: u.FailedLoginAttempts,
		LockUntil:      u.LockUntil,
	}
}

// PublicUser is the sanitized view of a user that is safe to send to clients
type PublicUser struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Avatar    string     `json:"avatar"`
	Role      string     `json:"role"`
	Theme     string     `json:"theme"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Avatar:    u.Avatar,
		Role:      u.Role,
		Theme:     u.Theme,
		LastLogin: u.LastLogin,
		CreatedAt: u.CreatedAt,
	}
}
