package incentive

import (
	"context"
	"testing"
	"time"

	"cleanscore-api/res/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgilityScorer_Compute_PerfectMonth(t *testing.T) {
	env := setupTest(t)
	scorer := NewAgilityScorer(env.cfg, NewAchievementEngine(env.cfg))
	ctx := context.Background()

	cleaner := createTestCleaner(t, env.store)

	// 10 completed bookings, each answered in the 5-minute reference time.
	monthStart := time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		createdAt := monthStart.AddDate(0, 0, i)
		createTestBooking(t, env.store, cleaner.ID, store.BookingStatusCompleted, createdAt, 300*time.Second)
	}

	snapshot, err := scorer.Compute(ctx, cleaner.ID, 2026, 7)
	require.NoError(t, err)

	assert.Equal(t, 10, snapshot.TotalCalls)
	assert.Equal(t, 10, snapshot.AcceptedCalls)
	assert.Equal(t, 10, snapshot.CompletedJobs)
	assert.Equal(t, 100.0, snapshot.AcceptanceRate)
	assert.Equal(t, 100.0, snapshot.CompletionRate)
	assert.Equal(t, 300.0, snapshot.AvgResponseTime)
	assert.Equal(t, 10.0, snapshot.AgilityScore)

	// Score mirrored onto the cleaner row
	updated, err := env.store.Cleaners().Get(ctx, cleaner.ID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, updated.AgilityScore)
}

func TestAgilityScorer_Compute_NoBookingsScoresZero(t *testing.T) {
	env := setupTest(t)
	scorer := NewAgilityScorer(env.cfg, NewAchievementEngine(env.cfg))

	cleaner := createTestCleaner(t, env.store)

	snapshot, err := scorer.Compute(context.Background(), cleaner.ID, 2026, 7)
	require.NoError(t, err)

	assert.Equal(t, 0, snapshot.TotalCalls)
	assert.Equal(t, 0.0, snapshot.AgilityScore)
}

func TestAgilityScorer_Compute_MixedOutcomes(t *testing.T) {
	env := setupTest(t)
	scorer := NewAgilityScorer(env.cfg, NewAchievementEngine(env.cfg))

	cleaner := createTestCleaner(t, env.store)

	// 5 completed with fast responses, 5 cancelled: acceptance 50% (5.0),
	// response 150s capped at 10.0, completion 100% (10.0).
	// 5.0*0.3 + 10.0*0.4 + 10.0*0.3 = 8.5
	monthStart := time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		createTestBooking(t, env.store, cleaner.ID, store.BookingStatusCompleted, monthStart.AddDate(0, 0, i), 150*time.Second)
	}
	for i := 5; i < 10; i++ {
		createTestBooking(t, env.store, cleaner.ID, store.BookingStatusCancelled, monthStart.AddDate(0, 0, i), 0)
	}

	snapshot, err := scorer.Compute(context.Background(), cleaner.ID, 2026, 7)
	require.NoError(t, err)

	assert.Equal(t, 10, snapshot.TotalCalls)
	assert.Equal(t, 5, snapshot.AcceptedCalls)
	assert.Equal(t, 5, snapshot.CancelledJobs)
	assert.Equal(t, 50.0, snapshot.AcceptanceRate)
	assert.Equal(t, 100.0, snapshot.CompletionRate)
	assert.Equal(t, 8.5, snapshot.AgilityScore)
}

func TestAgilityScorer_Compute_IgnoresOtherMonths(t *testing.T) {
	env := setupTest(t)
	scorer := NewAgilityScorer(env.cfg, NewAchievementEngine(env.cfg))

	cleaner := createTestCleaner(t, env.store)

	createTestBooking(t, env.store, cleaner.ID, store.BookingStatusCompleted,
		time.Date(2026, time.June, 30, 23, 0, 0, 0, time.UTC), 300*time.Second)
	createTestBooking(t, env.store, cleaner.ID, store.BookingStatusCompleted,
		time.Date(2026, time.July, 15, 12, 0, 0, 0, time.UTC), 300*time.Second)
	createTestBooking(t, env.store, cleaner.ID, store.BookingStatusCompleted,
		time.Date(2026, time.August, 1, 0, 30, 0, 0, time.UTC), 300*time.Second)

	snapshot, err := scorer.Compute(context.Background(), cleaner.ID, 2026, 7)
	require.NoError(t, err)

	assert.Equal(t, 1, snapshot.TotalCalls)
}

func TestAgilityScorer_Compute_UnknownCleaner(t *testing.T) {
	env := setupTest(t)
	scorer := NewAgilityScorer(env.cfg, NewAchievementEngine(env.cfg))

	_, err := scorer.Compute(context.Background(), "missing", 2026, 7)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAgilityScorer_Compute_UpsertOverwritesSnapshot(t *testing.T) {
	env := setupTest(t)
	scorer := NewAgilityScorer(env.cfg, NewAchievementEngine(env.cfg))
	ctx := context.Background()

	cleaner := createTestCleaner(t, env.store)
	monthStart := time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)
	createTestBooking(t, env.store, cleaner.ID, store.BookingStatusCompleted, monthStart, 300*time.Second)

	first, err := scorer.Compute(ctx, cleaner.ID, 2026, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, first.TotalCalls)

	createTestBooking(t, env.store, cleaner.ID, store.BookingStatusCompleted, monthStart.AddDate(0, 0, 1), 300*time.Second)

	second, err := scorer.Compute(ctx, cleaner.ID, 2026, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, second.TotalCalls)

	// Still a single row for the period
	stored, err := env.store.CleanerMetrics().Get(ctx, cleaner.ID, 2026, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.TotalCalls)
}

func TestAgilityScorer_Compute_FeedsAchievements(t *testing.T) {
	env := setupTest(t)
	scorer := NewAgilityScorer(env.cfg, NewAchievementEngine(env.cfg))
	ctx := context.Background()

	cleaner := createTestCleaner(t, env.store)
	monthStart := time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		createTestBooking(t, env.store, cleaner.ID, store.BookingStatusCompleted, monthStart.AddDate(0, 0, i), 300*time.Second)
	}

	_, err := scorer.Compute(ctx, cleaner.ID, 2026, 7)
	require.NoError(t, err)

	// Completed-booking total mirrored onto the cleaner row
	updated, err := env.store.Cleaners().Get(ctx, cleaner.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, updated.TotalBookings)

	// A fully completed month in the top percentile earns the volume,
	// completion and standing badges.
	achievements, err := env.store.Achievements().ListByActor(ctx, store.AchievementActorCleaner, cleaner.ID)
	require.NoError(t, err)
	types := make([]string, 0, len(achievements))
	for _, a := range achievements {
		types = append(types, a.Type)
	}
	assert.Contains(t, types, "first_booking")
	assert.Contains(t, types, "completion_master")
	assert.Contains(t, types, "top_performer")
}

func TestAgilityScorer_History(t *testing.T) {
	env := setupTest(t)
	scorer := NewAgilityScorer(env.cfg, NewAchievementEngine(env.cfg))
	ctx := context.Background()

	cleaner := createTestCleaner(t, env.store)
	for month := 1; month <= 4; month++ {
		_, err := scorer.Compute(ctx, cleaner.ID, 2026, month)
		require.NoError(t, err)
	}

	history, err := scorer.History(ctx, cleaner.ID, 3)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, 4, history[0].Month)
	assert.Equal(t, 2, history[2].Month)
}

func TestAgilityScore_ResponseScoreCapped(t *testing.T) {
	// A 1-second average response must not push the component above 10.
	m := &store.CleanerMetrics{
		TotalCalls:      1,
		AcceptanceRate:  100,
		CompletionRate:  100,
		AvgResponseTime: 1,
	}
	assert.Equal(t, 10.0, agilityScore(m))
}

func TestAgilityScore_SlowResponsesDragScore(t *testing.T) {
	// 1000s average: response component 3.0, others perfect.
	// 10*0.3 + 3*0.4 + 10*0.3 = 7.2
	m := &store.CleanerMetrics{
		TotalCalls:      4,
		AcceptanceRate:  100,
		CompletionRate:  100,
		AvgResponseTime: 1000,
	}
	assert.Equal(t, 7.2, agilityScore(m))
}
