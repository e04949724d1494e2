package postgresql

import (
	"context"
	"fmt"
	"runtime"

	"cleanscore-api/res/store"

	sqlCommenter "github.com/gouyelliot/gorm-sqlcommenter-plugin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type storeImpl struct {
	db *gorm.DB

	userStore        *userStore
	cleanerStore     *cleanerStore
	bookingStore     *bookingStore
	ratingStore      *ratingStore
	metricsStore     *metricsStore
	bonusStore       *bonusStore
	punishmentStore  *punishmentStore
	achievementStore *achievementStore
}

func (sImpl *storeImpl) Users() store.UserStore {
	return sImpl.userStore
}

func (sImpl *storeImpl) Cleaners() store.CleanerStore {
	return sImpl.cleanerStore
}

func (sImpl *storeImpl) Bookings() store.BookingStore {
	return sImpl.bookingStore
}

func (sImpl *storeImpl) Ratings() store.RatingStore {
	return sImpl.ratingStore
}

func (sImpl *storeImpl) CleanerMetrics() store.CleanerMetricsStore {
	return sImpl.metricsStore
}

func (sImpl *storeImpl) CleanerBonuses() store.CleanerBonusStore {
	return sImpl.bonusStore
}

func (sImpl *storeImpl) CleanerPunishments() store.CleanerPunishmentStore {
	return sImpl.punishmentStore
}

func (sImpl *storeImpl) Achievements() store.AchievementStore {
	return sImpl.achievementStore
}

// Atomically runs fn against a Store bound to a single transaction.
func (sImpl *storeImpl) Atomically(ctx context.Context, fn func(store.Store) error) error {
	return sImpl.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewWithDB(tx))
	})
}

func (sImpl *storeImpl) GetDB() interface{} {
	return sImpl.db
}

func Connect(connectionUrl string) (*storeImpl, error) {
	db, err := gorm.Open(postgres.Open(connectionUrl), &gorm.Config{TranslateError: true, PrepareStmt: false})
	if err != nil {
		return nil, err
	}

	err = db.Use(sqlCommenter.New())
	if err != nil {
		return nil, err
	}

	err = decorateDBOperationsWithAdditionalInfo(db)
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&store.User{},
		&store.Cleaner{},
		&store.Booking{},
		&store.Rating{},
		&store.CleanerMetrics{},
		&store.CleanerBonus{},
		&store.CleanerPunishment{},
		&store.Achievement{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to auto-migrate tables: %w", err)
	}

	return NewWithDB(db), nil
}

// NewWithDB builds a Store over an already-open gorm connection. Used by
// Connect, by Atomically for transaction-scoped stores, and by tests that
// run against in-memory SQLite.
func NewWithDB(db *gorm.DB) *storeImpl {
	s := &storeImpl{db: db}

	s.userStore = NewUserStore(s)
	s.cleanerStore = NewCleanerStore(s)
	s.bookingStore = NewBookingStore(s)
	s.ratingStore = NewRatingStore(s)
	s.metricsStore = NewMetricsStore(s)
	s.bonusStore = NewBonusStore(s)
	s.punishmentStore = NewPunishmentStore(s)
	s.achievementStore = NewAchievementStore(s)

	return s
}

// COMMON UTILITIES

// translateError maps gorm errors onto the store sentinel errors.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case err == gorm.ErrRecordNotFound:
		return store.ErrNotFound
	case err == gorm.ErrDuplicatedKey:
		return store.ErrUniqueViolation
	}
	return err
}

func identifyCallee(stackDepth int) string {
	function, _, line, ok := runtime.Caller(stackDepth)
	if !ok {
		return "<missing-runtime-info>"
	}
	return fmt.Sprintf("%s:%d", runtime.FuncForPC(function).Name(), line)
}

func annotateWithInfoHook(db *gorm.DB) {
	info := identifyCallee(4) // Skip the internal gorm calls & the 2 local setup calls
	db.Clauses(sqlCommenter.NewTag("action", info))
}

func decorateDBOperationsWithAdditionalInfo(db *gorm.DB) error {
	return db.Callback().Query().Before("gorm:query").Register("store::annotate_with_info", annotateWithInfoHook)
}
