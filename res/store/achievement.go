package store

import (
	"context"
	"time"
)

// AchievementActor distinguishes client and cleaner achievement tracks
type AchievementActor string

const (
	AchievementActorUser    AchievementActor = "user"
	AchievementActorCleaner AchievementActor = "cleaner"
)

// AchievementLevelMax caps tier progression (1 bronze, 2 silver, 3 gold).
const AchievementLevelMax = 3

// Achievement is a tiered badge held by a user or cleaner. Re-unlocking the
// same type raises the level instead of duplicating the record.
type Achievement struct {
	ID        string           `gorm:"primaryKey;size:50;unique"`
	ActorType AchievementActor `gorm:"size:10;not null;uniqueIndex:idx_achievement_actor_type"`
	ActorID   string           `gorm:"size:50;not null;uniqueIndex:idx_achievement_actor_type;index:idx_achievement_actor"`
	Type      string           `gorm:"size:40;not null;uniqueIndex:idx_achievement_actor_type"`

	Name        string `gorm:"size:120;not null"`
	Description string `gorm:"type:text"`
	Icon        string `gorm:"size:16"`

	Level    int `gorm:"not null;default:1;check:level >= 1 AND level <= 3"`
	Progress int `gorm:"not null;default:0"`

	BonusPoints int `gorm:"not null;default:0"`
	// Earnings bonus fraction granted to cleaners (e.g. 0.05 = 5%)
	BonusEarnings float64 `gorm:"not null;default:0"`

	AwardedFor string `gorm:"size:60"`
	AwardedBy  string `gorm:"size:50"`

	UnlockedAt time.Time `gorm:"autoCreateTime;not null;index:idx_achievement_unlocked"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime;not null"`
}

// AchievementStore defines the data access interface for achievements
type AchievementStore interface {
	// Create creates a new achievement record
	Create(ctx context.Context, achievement *Achievement) error

	// Get retrieves an achievement by ID
	Get(ctx context.Context, id string) (*Achievement, error)

	// GetByActorAndType retrieves the record for an (actor, type) pair
	GetByActorAndType(ctx context.Context, actorType AchievementActor, actorID, achievementType string) (*Achievement, error)

	// Update updates an achievement record
	Update(ctx context.Context, achievement *Achievement) error

	// ListByActor retrieves all achievements held by an actor, newest first.
	ListByActor(ctx context.Context, actorType AchievementActor, actorID string) ([]*Achievement, error)

	// TopByLevel retrieves an actor's achievements ordered by level
	// descending then unlock time descending.
	TopByLevel(ctx context.Context, actorType AchievementActor, actorID string, limit int) ([]*Achievement, error)
}
