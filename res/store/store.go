package store

import "context"

type Store interface {
	Users() UserStore
	Cleaners() CleanerStore
	Bookings() BookingStore
	Ratings() RatingStore
	CleanerMetrics() CleanerMetricsStore
	CleanerBonuses() CleanerBonusStore
	CleanerPunishments() CleanerPunishmentStore
	Achievements() AchievementStore

	// Atomically runs fn inside a single database transaction. The Store
	// passed to fn operates on the transaction; any error aborts the whole
	// unit of work.
	Atomically(ctx context.Context, fn func(Store) error) error

	// Database access for advanced operations
	GetDB() interface{} // Returns the underlying database connection
}
