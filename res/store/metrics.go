package store

import (
	"context"
	"time"
)

// CleanerMetrics is the monthly performance snapshot for a cleaner. One row
// per (cleaner, year, month), overwritten on recalculation.
type CleanerMetrics struct {
	ID        string   `gorm:"primaryKey;size:50;unique"`
	Cleaner   *Cleaner `gorm:"foreignKey:CleanerID"`
	CleanerID string   `gorm:"size:50;not null;uniqueIndex:idx_metrics_cleaner_period"`
	Year      int      `gorm:"not null;uniqueIndex:idx_metrics_cleaner_period;index:idx_metrics_period"`
	Month     int      `gorm:"not null;uniqueIndex:idx_metrics_cleaner_period;index:idx_metrics_period"`

	// Call volume
	TotalCalls    int `gorm:"not null;default:0"`
	AcceptedCalls int `gorm:"not null;default:0"`
	RejectedCalls int `gorm:"not null;default:0"`

	// Outcomes
	CompletedJobs int `gorm:"not null;default:0"`
	CancelledJobs int `gorm:"not null;default:0"`
	NoShowJobs    int `gorm:"not null;default:0"`

	// Rates (percentages, 0-100)
	AcceptanceRate float64 `gorm:"not null;default:0"`
	CompletionRate float64 `gorm:"not null;default:0"`

	// Responsiveness
	AvgResponseTime float64 `gorm:"not null;default:0"` // seconds

	// Reviews received during the period
	AvgRating            float64 `gorm:"not null;default:0"`
	TotalReviewsReceived int     `gorm:"not null;default:0"`
	FiveStarReviews      int     `gorm:"not null;default:0"`

	// Composite score and ranking results
	AgilityScore  float64 `gorm:"not null;default:0;index:idx_metrics_agility"`
	Ranking       int     `gorm:"not null;default:0"`
	TopPercentile bool    `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null"`
}

// CleanerMetricsStore defines the data access interface for monthly metrics
type CleanerMetricsStore interface {
	// Get retrieves the snapshot for a cleaner and period
	Get(ctx context.Context, cleanerID string, year, month int) (*CleanerMetrics, error)

	// Upsert creates or overwrites the snapshot keyed by (cleaner, year, month)
	Upsert(ctx context.Context, metrics *CleanerMetrics) error

	// Update writes back a snapshot (used for rank assignment)
	Update(ctx context.Context, metrics *CleanerMetrics) error

	// ListForPeriod retrieves all snapshots for a period ordered by
	// agility score descending, with the cleaner row preloaded.
	ListForPeriod(ctx context.Context, year, month int) ([]*CleanerMetrics, error)

	// History retrieves a cleaner's most recent snapshots, newest period first.
	History(ctx context.Context, cleanerID string, limit int) ([]*CleanerMetrics, error)

	// TopPercentile retrieves the top-percentile snapshots for a period
	// ordered by agility score descending.
	TopPercentile(ctx context.Context, year, month, limit int) ([]*CleanerMetrics, error)
}
