package store

import (
	"context"
	"time"
)

// CleanerStatus represents the account standing of a cleaner
type CleanerStatus string

const (
	CleanerStatusActive    CleanerStatus = "active"
	CleanerStatusInactive  CleanerStatus = "inactive"
	CleanerStatusSuspended CleanerStatus = "suspended" // Reputation reached zero
	CleanerStatusVerified  CleanerStatus = "verified"  // Identity-checked, ranks alongside active
)

const (
	ReputationPointsMax     = 100
	ReputationPointsInitial = 100
)

// Cleaner represents a service provider and the aggregate state the
// incentive engines maintain for them.
type Cleaner struct {
	ID     string `gorm:"primaryKey;size:50;unique"`
	User   *User  `gorm:"foreignKey:UserID"`
	UserID string `gorm:"size:50;not null;unique;index:idx_cleaner_user"`

	Region string `gorm:"size:120;index:idx_cleaner_region"`

	Status CleanerStatus `gorm:"size:20;not null;default:'active';index:idx_cleaner_status"`

	// Reputation (0-100, punishments deduct, reversals restore)
	ReputationPoints int `gorm:"not null;default:100;check:reputation_points >= 0 AND reputation_points <= 100"`

	// Performance aggregates the engines maintain for fast lookup.
	// AgilityScore mirrors the latest monthly snapshot; the rest are
	// all-time totals.
	AgilityScore  float64 `gorm:"not null;default:0"`
	AverageRating float64 `gorm:"type:decimal(3,2);not null;default:0"`
	ReviewCount   int     `gorm:"not null;default:0"`
	TotalBookings int     `gorm:"not null;default:0"`

	// Bonus streak state
	ConsecutiveFiveStars  int   `gorm:"not null;default:0"`
	TotalBonusEarnedCents int64 `gorm:"not null;default:0"`

	// Top-cleaner badge granted on bonus award, expires after 30 days
	TopCleanerBadge bool `gorm:"not null;default:false"`
	TopCleanerUntil *time.Time

	// Payout destination (PIX key preferred over bank account)
	PixKey      *string `gorm:"size:140"`
	BankAccount *string `gorm:"size:64"`

	// Optimistic concurrency guard for read-modify-write updates
	Version int `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null;index:idx_cleaner_created"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null"`
}

// IsRankable reports whether the cleaner participates in public rankings.
func (c *Cleaner) IsRankable() bool {
	return c.Status == CleanerStatusActive || c.Status == CleanerStatusVerified
}

// HasPayoutDestination reports whether a bonus transfer can be attempted.
func (c *Cleaner) HasPayoutDestination() bool {
	return (c.PixKey != nil && *c.PixKey != "") || (c.BankAccount != nil && *c.BankAccount != "")
}

// RankableStatuses is the status set used by ranking queries.
func RankableStatuses() []CleanerStatus {
	return []CleanerStatus{CleanerStatusActive, CleanerStatusVerified}
}

// CleanerStore defines the data access interface for cleaners
type CleanerStore interface {
	// Create creates a new cleaner
	Create(ctx context.Context, cleaner *Cleaner) error

	// Get retrieves a cleaner by ID
	Get(ctx context.Context, id string) (*Cleaner, error)

	// GetByUserID retrieves the cleaner record owned by a user
	GetByUserID(ctx context.Context, userID string) (*Cleaner, error)

	// Update writes the cleaner back, guarded by the Version the row was
	// read with. Returns ErrVersionConflict if the row changed in between.
	Update(ctx context.Context, cleaner *Cleaner) error

	// List retrieves cleaners with filters
	List(ctx context.Context, filters CleanerFilters) ([]*Cleaner, error)

	// Count counts cleaners matching the filters
	Count(ctx context.Context, filters CleanerFilters) (int, error)

	// CountWithHigherAgility counts cleaners in the given statuses whose
	// stored agility score is strictly greater than score.
	CountWithHigherAgility(ctx context.Context, score float64, statuses []CleanerStatus) (int, error)
}

// CleanerFilters contains filter options for listing cleaners
type CleanerFilters struct {
	Statuses []CleanerStatus
	Region   *string // Case-insensitive substring match
	OrderBy  string  // e.g. "agility_score DESC"
	Limit    int
	Offset   int
}
