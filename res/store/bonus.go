package store

import (
	"context"
	"time"
)

// BonusStatus represents the payout state of a bonus. transferred is
// terminal once the payout succeeded; a failed payout attempt reverts
// the flip back to pending.
type BonusStatus string

const (
	BonusStatusPending     BonusStatus = "pending"
	BonusStatusTransferred BonusStatus = "transferred"
)

// BonusReason identifies why a bonus was granted
type BonusReason string

const (
	BonusReasonTenConsecutiveFiveStars BonusReason = "10_consecutive_five_stars"
)

// StreakBonusAmountCents is the fixed grant for a ten-five-star streak.
const StreakBonusAmountCents int64 = 100_00

// CleanerBonus is a monetary bonus granted to a cleaner.
type CleanerBonus struct {
	ID        string   `gorm:"primaryKey;size:50;unique"`
	Cleaner   *Cleaner `gorm:"foreignKey:CleanerID"`
	CleanerID string   `gorm:"size:50;not null;index:idx_bonus_cleaner"`

	AmountCents int64       `gorm:"not null"`
	Reason      BonusReason `gorm:"size:40;not null"`
	Status      BonusStatus `gorm:"size:20;not null;default:'pending';index:idx_bonus_status"`

	TransferredAt *time.Time

	CreatedAt time.Time `gorm:"autoCreateTime;not null;index:idx_bonus_created"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null"`
}

// CleanerBonusStore defines the data access interface for bonuses
type CleanerBonusStore interface {
	// Create creates a new bonus
	Create(ctx context.Context, bonus *CleanerBonus) error

	// Get retrieves a bonus by ID
	Get(ctx context.Context, id string) (*CleanerBonus, error)

	// MarkTransferred transitions a bonus from pending to transferred.
	// The update is guarded at the row level: a bonus that is not pending
	// is left untouched and false is returned.
	MarkTransferred(ctx context.Context, bonusID string, transferredAt time.Time) (bool, error)

	// RevertTransfer puts a transferred bonus back to pending. Used to
	// undo an optimistic MarkTransferred when the payout never happened.
	RevertTransfer(ctx context.Context, bonusID string) error

	// ListByCleaner retrieves a cleaner's bonuses, newest first.
	ListByCleaner(ctx context.Context, cleanerID string, limit int) ([]*CleanerBonus, error)

	// SumTransferred sums the amounts of a cleaner's transferred bonuses.
	// Pending bonuses are excluded.
	SumTransferred(ctx context.Context, cleanerID string) (int64, error)
}
