package store

import (
	"context"
	"time"
)

type UserRole string

const (
	UserRoleClient      UserRole = "CLIENT"       // Regular customer (default sign-in)
	UserRoleCleaner     UserRole = "CLEANER"      // Service provider (has a Cleaner record)
	UserRoleGlobalAdmin UserRole = "GLOBAL_ADMIN" // Platform administrator
)

type User struct {
	ID          string   `gorm:"primaryKey;size:50;unique"`
	DisplayName string   `gorm:"size:50;not null"`
	Role        UserRole `gorm:"size:50;not null;default:'CLIENT'"`

	Email string `gorm:"size:256;not null"`

	// Counters feeding client-side achievement checks
	TotalBookings int `gorm:"not null;default:0"`

	UpdatedAt time.Time `gorm:"autoUpdateTime;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime;not null"`
}

// IsGlobalAdmin checks if the user has global admin privileges
func (u *User) IsGlobalAdmin() bool {
	return u.Role == UserRoleGlobalAdmin
}

// IsCleaner checks if the user works as a cleaner
func (u *User) IsCleaner() bool {
	return u.Role == UserRoleCleaner
}

type UserStore interface {
	Get(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)

	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) error
}
