package store

import (
	"context"
	"time"
)

// PunishmentType classifies why a penalty was issued
type PunishmentType string

const (
	PunishmentTypeNoShow           PunishmentType = "no_show"
	PunishmentTypeCancellationBoth PunishmentType = "cancellation_both"
	PunishmentTypeLowRating        PunishmentType = "low_rating"
)

// PunishmentState is the explicit lifecycle of a punishment. A punishment
// is created active and leaves that state exactly one of two ways: passive
// expiry (points stay deducted) or admin reversal (points restored).
type PunishmentState string

const (
	PunishmentStateActive   PunishmentState = "active"
	PunishmentStateExpired  PunishmentState = "expired"  // blockedUntil passed; deduction permanent
	PunishmentStateReversed PunishmentState = "reversed" // removed by admin; deduction restored
)

// CleanerPunishment is a reputation penalty with a temporary block.
type CleanerPunishment struct {
	ID        string   `gorm:"primaryKey;size:50;unique"`
	Cleaner   *Cleaner `gorm:"foreignKey:CleanerID"`
	CleanerID string   `gorm:"size:50;not null;index:idx_punishment_cleaner"`

	Type           PunishmentType  `gorm:"size:30;not null"`
	Reason         string          `gorm:"type:text;not null"`
	Description    string          `gorm:"type:text"`
	PointsDeducted int             `gorm:"not null"`
	State          PunishmentState `gorm:"size:20;not null;default:'active';index:idx_punishment_state"`
	BlockedUntil   time.Time       `gorm:"not null;index:idx_punishment_blocked_until"`

	RelatedBookingID *string `gorm:"size:50"`
	RelatedDisputeID *string `gorm:"size:50"`

	GivenByAdmin  bool    `gorm:"not null;default:false"`
	AdminID       *string `gorm:"size:50"`
	RemovalReason string  `gorm:"type:text"`
	RemovedByID   *string `gorm:"size:50"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null;index:idx_punishment_created"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null"`
}

// InForce reports whether the punishment currently blocks the cleaner.
func (p *CleanerPunishment) InForce(now time.Time) bool {
	return p.State == PunishmentStateActive && p.BlockedUntil.After(now)
}

// CleanerPunishmentStore defines the data access interface for punishments
type CleanerPunishmentStore interface {
	// Create creates a new punishment
	Create(ctx context.Context, punishment *CleanerPunishment) error

	// Get retrieves a punishment by ID
	Get(ctx context.Context, id string) (*CleanerPunishment, error)

	// Update updates a punishment
	Update(ctx context.Context, punishment *CleanerPunishment) error

	// ListByCleaner retrieves a cleaner's punishments, newest first.
	ListByCleaner(ctx context.Context, cleanerID string, limit int) ([]*CleanerPunishment, error)

	// ListInForceByCleaner retrieves a cleaner's active punishments whose
	// block has not passed yet, newest first.
	ListInForceByCleaner(ctx context.Context, cleanerID string, now time.Time) ([]*CleanerPunishment, error)

	// ListInForce retrieves all in-force punishments across cleaners,
	// ordered by blocked_until ascending (admin view).
	ListInForce(ctx context.Context, now time.Time, limit int) ([]*CleanerPunishment, error)

	// ExpireDue bulk-flips active punishments whose block has passed to
	// the expired state. Returns the number of rows updated.
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
}
