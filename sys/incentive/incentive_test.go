package incentive

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"cleanscore-api/res/notification"
	"cleanscore-api/res/payout"
	"cleanscore-api/res/store"
	"cleanscore-api/res/store/postgresql"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// recordingNotifier captures notifications for assertions.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification.NotificationType
	err  error
}

func (n *recordingNotifier) Notify(ctx context.Context, actorID, title, message string, typ notification.NotificationType) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, typ)
	return n.err
}

func (n *recordingNotifier) types() []notification.NotificationType {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification.NotificationType(nil), n.sent...)
}

// fakeGateway simulates payout transfers. onTransfer runs on every call,
// letting tests observe state at the moment the money would move.
type fakeGateway struct {
	accept     bool
	err        error
	transfers  int
	onTransfer func()
}

func (g *fakeGateway) Transfer(ctx context.Context, dest payout.Destination, amountCents int64) (bool, error) {
	g.transfers++
	if g.onTransfer != nil {
		g.onTransfer()
	}
	if g.err != nil {
		return false, g.err
	}
	return g.accept, nil
}

// interceptingStore delegates to the wrapped store but runs a hook before
// the first transaction begins, simulating a concurrent writer landing
// between an engine's read phase and its write.
type interceptingStore struct {
	store.Store
	before func()
}

func (s *interceptingStore) Atomically(ctx context.Context, fn func(store.Store) error) error {
	if s.before != nil {
		hook := s.before
		s.before = nil
		hook()
	}
	return s.Store.Atomically(ctx, fn)
}

type testEnv struct {
	cfg      *Config
	store    store.Store
	notifier *recordingNotifier
	gateway  *fakeGateway
}

func setupTest(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

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
	require.NoError(t, err)

	notifier := &recordingNotifier{}
	gateway := &fakeGateway{accept: true}

	cfg := &Config{
		Logger:   log.New(io.Discard, "", 0),
		Store:    postgresql.NewWithDB(db),
		Notifier: notifier,
		Payouts:  gateway,
	}
	return &testEnv{cfg: cfg, store: cfg.Store, notifier: notifier, gateway: gateway}
}

func createTestCleaner(t *testing.T, s store.Store, mutate ...func(*store.Cleaner)) *store.Cleaner {
	t.Helper()
	ctx := context.Background()

	user := &store.User{
		ID:          uuid.New().String(),
		Email:       fmt.Sprintf("%s@example.com", uuid.New().String()),
		DisplayName: "Test Cleaner",
		Role:        store.UserRoleCleaner,
	}
	require.NoError(t, s.Users().Create(ctx, user))

	cleaner := &store.Cleaner{
		ID:               uuid.New().String(),
		UserID:           user.ID,
		Region:           "Sao Paulo",
		Status:           store.CleanerStatusActive,
		ReputationPoints: store.ReputationPointsInitial,
	}
	for _, m := range mutate {
		m(cleaner)
	}
	require.NoError(t, s.Cleaners().Create(ctx, cleaner))
	return cleaner
}

func createTestBooking(t *testing.T, s store.Store, cleanerID string, status store.BookingStatus, createdAt time.Time, responseAfter time.Duration) *store.Booking {
	t.Helper()
	ctx := context.Background()

	user := &store.User{
		ID:          uuid.New().String(),
		Email:       fmt.Sprintf("%s@example.com", uuid.New().String()),
		DisplayName: "Test Customer",
		Role:        store.UserRoleClient,
	}
	require.NoError(t, s.Users().Create(ctx, user))

	booking := &store.Booking{
		ID:         uuid.New().String(),
		CustomerID: user.ID,
		CleanerID:  cleanerID,
		Status:     status,
	}
	if responseAfter > 0 {
		respondedAt := createdAt.Add(responseAfter)
		booking.RespondedAt = &respondedAt
	}
	require.NoError(t, s.Bookings().Create(ctx, booking))

	// autoCreateTime stamps rows with now; backdate for period queries.
	db := s.GetDB().(*gorm.DB)
	require.NoError(t, db.Model(&store.Booking{}).Where("id = ?", booking.ID).
		Update("created_at", createdAt).Error)
	booking.CreatedAt = createdAt
	return booking
}

func createTestRating(t *testing.T, s store.Store, cleanerID string, stars int, createdAt time.Time) *store.Rating {
	t.Helper()
	ctx := context.Background()

	booking := createTestBooking(t, s, cleanerID, store.BookingStatusCompleted, createdAt, 0)
	rating := &store.Rating{
		ID:        uuid.New().String(),
		BookingID: booking.ID,
		Direction: store.RatingUserToCleaner,
		GivenByID: booking.CustomerID,
		CleanerID: &cleanerID,
		Rating:    stars,
		IsPublic:  true,
	}
	require.NoError(t, s.Ratings().Create(ctx, rating))

	db := s.GetDB().(*gorm.DB)
	require.NoError(t, db.Model(&store.Rating{}).Where("id = ?", rating.ID).
		Update("created_at", createdAt).Error)
	rating.CreatedAt = createdAt
	return rating
}
