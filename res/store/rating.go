package store

import (
	"context"
	"time"
)

// RatingDirection identifies who rated whom for a booking.
type RatingDirection string

const (
	RatingUserToCleaner RatingDirection = "user_to_cleaner"
	RatingCleanerToUser RatingDirection = "cleaner_to_user"
)

// Rating represents feedback tied one-to-one to a completed booking per
// direction. Exactly one rating may exist per (booking, direction).
type Rating struct {
	ID        string          `gorm:"primaryKey;size:50;unique"`
	Booking   *Booking        `gorm:"foreignKey:BookingID"`
	BookingID string          `gorm:"size:50;not null;uniqueIndex:idx_rating_booking_direction"`
	Direction RatingDirection `gorm:"size:20;not null;uniqueIndex:idx_rating_booking_direction"`

	GivenByID string `gorm:"size:50;not null;index:idx_rating_given_by"`
	// The cleaner receiving the rating, set for user_to_cleaner ratings
	CleanerID *string `gorm:"size:50;index:idx_rating_cleaner"`
	// The user receiving the rating, set for cleaner_to_user ratings
	UserID *string `gorm:"size:50;index:idx_rating_user"`

	// Rating (1-5 stars)
	Rating  int    `gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Comment string `gorm:"type:text"`

	// Detailed ratings (optional breakdown)
	PunctualityRating     *int `gorm:"check:punctuality_rating >= 1 AND punctuality_rating <= 5"`
	ProfessionalismRating *int `gorm:"check:professionalism_rating >= 1 AND professionalism_rating <= 5"`
	QualityRating         *int `gorm:"check:quality_rating >= 1 AND quality_rating <= 5"`
	CommunicationRating   *int `gorm:"check:communication_rating >= 1 AND communication_rating <= 5"`

	// Moderation
	IsPublic bool `gorm:"not null;default:true"`
	Flagged  bool `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null;index:idx_rating_created"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null"`
}

// RatingStore defines the data access interface for ratings
type RatingStore interface {
	// Create creates a new rating. Returns ErrUniqueViolation when a
	// rating already exists for the (booking, direction) pair.
	Create(ctx context.Context, rating *Rating) error

	// Get retrieves a rating by ID
	Get(ctx context.Context, id string) (*Rating, error)

	// GetByBooking retrieves the rating for a booking in a direction
	GetByBooking(ctx context.Context, bookingID string, direction RatingDirection) (*Rating, error)

	// Update updates a rating
	Update(ctx context.Context, rating *Rating) error

	// LatestForCleaner retrieves the most recent user_to_cleaner ratings
	// received by a cleaner, newest first.
	LatestForCleaner(ctx context.Context, cleanerID string, limit int) ([]*Rating, error)

	// ForCleanerCreatedBetween retrieves the user_to_cleaner ratings a
	// cleaner received within [start, end], oldest first.
	ForCleanerCreatedBetween(ctx context.Context, cleanerID string, start, end time.Time) ([]*Rating, error)

	// AverageForCleaner calculates the average user_to_cleaner rating for
	// a cleaner. Returns (average, count).
	AverageForCleaner(ctx context.Context, cleanerID string) (float64, int, error)
}
