package store

import (
	"context"
	"time"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "pending"     // Initial state, awaiting cleaner confirmation
	BookingStatusConfirmed  BookingStatus = "confirmed"   // Cleaner confirmed
	BookingStatusInProgress BookingStatus = "in_progress" // Service is being performed
	BookingStatusCompleted  BookingStatus = "completed"   // Service completed successfully
	BookingStatusCancelled  BookingStatus = "cancelled"   // Cancelled by customer or cleaner
	BookingStatusNoShow     BookingStatus = "no_show"     // Cleaner did not show up
)

// Booking is the read-model the incentive engines consume. Scheduling,
// pricing and address details live with the booking service and are not
// carried here.
type Booking struct {
	ID         string   `gorm:"primaryKey;size:50;unique"`
	Customer   *User    `gorm:"foreignKey:CustomerID"`
	CustomerID string   `gorm:"size:50;not null;index:idx_booking_customer"`
	Cleaner    *Cleaner `gorm:"foreignKey:CleanerID"`
	CleanerID  string   `gorm:"size:50;not null;index:idx_booking_cleaner"`

	Status BookingStatus `gorm:"size:20;not null;default:'pending';index:idx_booking_status"`

	// When the cleaner accepted or declined the call. Response time for
	// agility scoring is RespondedAt - CreatedAt.
	RespondedAt *time.Time

	CompletedAt *time.Time
	CancelledAt *time.Time

	CreatedAt time.Time `gorm:"autoCreateTime;not null;index:idx_booking_created"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null"`
}

// ResponseSeconds returns how long the cleaner took to respond, or false
// if they have not responded yet.
func (b *Booking) ResponseSeconds() (float64, bool) {
	if b.RespondedAt == nil {
		return 0, false
	}
	return b.RespondedAt.Sub(b.CreatedAt).Seconds(), true
}

// BookingStore defines the data access interface for bookings
type BookingStore interface {
	// Create creates a new booking
	Create(ctx context.Context, booking *Booking) error

	// Get retrieves a booking by ID
	Get(ctx context.Context, id string) (*Booking, error)

	// Update updates a booking
	Update(ctx context.Context, booking *Booking) error

	// GetByCleanerCreatedBetween retrieves a cleaner's bookings whose
	// creation timestamp falls within [start, end].
	GetByCleanerCreatedBetween(ctx context.Context, cleanerID string, start, end time.Time) ([]*Booking, error)

	// CountCompletedByCleaner counts a cleaner's completed bookings.
	CountCompletedByCleaner(ctx context.Context, cleanerID string) (int, error)

	// CountCompletedByCustomer counts a customer's completed bookings.
	CountCompletedByCustomer(ctx context.Context, customerID string) (int, error)

	// UpdateStatus updates the status of a booking
	UpdateStatus(ctx context.Context, bookingID string, status BookingStatus) error
}
