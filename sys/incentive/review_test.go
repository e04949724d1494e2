package incentive

import (
	"context"
	"testing"
	"time"

	"cleanscore-api/res/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupReviewIntake(env *testEnv) *ReviewIntake {
	bonuses := NewBonusEngine(env.cfg)
	achievements := NewAchievementEngine(env.cfg)
	return NewReviewIntake(env.cfg, bonuses, achievements)
}

func TestReviewIntake_Submit_UpdatesCleanerAggregates(t *testing.T) {
	env := setupTest(t)
	intake := setupReviewIntake(env)
	ctx := context.Background()

	cleaner := createTestCleaner(t, env.store)
	booking := createTestBooking(t, env.store, cleaner.ID, store.BookingStatusCompleted, time.Now().Add(-time.Hour), 0)

	rating, err := intake.Submit(ctx, SubmitInput{
		BookingID: booking.ID,
		Direction: store.RatingUserToCleaner,
		GivenByID: booking.CustomerID,
		Rating:    5,
		Comment:   "spotless",
	})
	require.NoError(t, err)
	require.NotNil(t, rating.CleanerID)
	assert.Equal(t, cleaner.ID, *rating.CleanerID)

	updated, err := env.store.Cleaners().Get(ctx, cleaner.ID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, updated.AverageRating)
	assert.Equal(t, 1, updated.ReviewCount)
	assert.Equal(t, 1, updated.ConsecutiveFiveStars)
}

func TestReviewIntake_Submit_LowRatingResetsStreak(t *testing.T) {
	env := setupTest(t)
	intake := setupReviewIntake(env)
	ctx := context.Background()

	cleaner := createTestCleaner(t, env.store, func(c *store.Cleaner) {
		c.ConsecutiveFiveStars = 7
	})
	booking := createTestBooking(t, env.store, cleaner.ID, store.BookingStatusCompleted, time.Now().Add(-time.Hour), 0)

	_, err := intake.Submit(ctx, SubmitInput{
		BookingID: booking.ID,
		Direction: store.RatingUserToCleaner,
		GivenByID: booking.CustomerID,
		Rating:    3,
	})
	require.NoError(t, err)

	updated, err := env.store.Cleaners().Get(ctx, cleaner.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.ConsecutiveFiveStars)
}

func TestReviewIntake_Submit_TenthFiveStarAwardsBonus(t *testing.T) {
	env := setupTest(t)
	intake := setupReviewIntake(env)
	ctx := context.Background()

	cleaner := createTestCleaner(t, env.store, func(c *store.Cleaner) {
		c.ConsecutiveFiveStars = 9
	})
	seedFiveStarStreak(t, env, cleaner.ID, 9)
	booking := createTestBooking(t, env.store, cleaner.ID, store.BookingStatusCompleted, time.Now().Add(-time.Minute), 0)

	_, err := intake.Submit(ctx, SubmitInput{
		BookingID: booking.ID,
		Direction: store.RatingUserToCleaner,
		GivenByID: booking.CustomerID,
		Rating:    5,
	})
	require.NoError(t, err)

	bonuses, err := env.store.CleanerBonuses().ListByCleaner(ctx, cleaner.ID, 0)
	require.NoError(t, err)
	require.Len(t, bonuses, 1)
	assert.Equal(t, store.StreakBonusAmountCents, bonuses[0].AmountCents)

	// Streak achievement unlocked alongside the bonus
	achievement, err := env.store.Achievements().GetByActorAndType(ctx, store.AchievementActorCleaner, cleaner.ID, "five_star_master")
	require.NoError(t, err)
	assert.Equal(t, 1, achievement.Level)
}

func TestReviewIntake_Submit_DuplicateConflict(t *testing.T) {
	env := setupTest(t)
	intake := setupReviewIntake(env)
	ctx := context.Background()

	cleaner := createTestCleaner(t, env.store)
	booking := createTestBooking(t, env.store, cleaner.ID, store.BookingStatusCompleted, time.Now().Add(-time.Hour), 0)

	input := SubmitInput{
		BookingID: booking.ID,
		Direction: store.RatingUserToCleaner,
		GivenByID: booking.CustomerID,
		Rating:    4,
	}
	_, err := intake.Submit(ctx, input)
	require.NoError(t, err)

	_, err = intake.Submit(ctx, input)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestReviewIntake_Submit_BothDirectionsAllowed(t *testing.T) {
	env := setupTest(t)
	intake := setupReviewIntake(env)
	ctx := context.Background()

	cleaner := createTestCleaner(t, env.store)
	booking := createTestBooking(t, env.store, cleaner.ID, store.BookingStatusCompleted, time.Now().Add(-time.Hour), 0)

	_, err := intake.Submit(ctx, SubmitInput{
		BookingID: booking.ID,
		Direction: store.RatingUserToCleaner,
		GivenByID: booking.CustomerID,
		Rating:    5,
	})
	require.NoError(t, err)

	rating, err := intake.Submit(ctx, SubmitInput{
		BookingID: booking.ID,
		Direction: store.RatingCleanerToUser,
		GivenByID: cleaner.ID,
		Rating:    4,
	})
	require.NoError(t, err)
	require.NotNil(t, rating.UserID)
	assert.Equal(t, booking.CustomerID, *rating.UserID)
}

func TestReviewIntake_Submit_CleanerRatingDrivesUserMilestones(t *testing.T) {
	env := setupTest(t)
	intake := setupReviewIntake(env)
	ctx := context.Background()

	cleaner := createTestCleaner(t, env.store)
	booking := createTestBooking(t, env.store, cleaner.ID, store.BookingStatusCompleted, time.Now().Add(-time.Hour), 0)

	_, err := intake.Submit(ctx, SubmitInput{
		BookingID: booking.ID,
		Direction: store.RatingCleanerToUser,
		GivenByID: cleaner.ID,
		Rating:    5,
	})
	require.NoError(t, err)

	achievement, err := env.store.Achievements().GetByActorAndType(ctx, store.AchievementActorUser, booking.CustomerID, "first_booking")
	require.NoError(t, err)
	assert.Equal(t, 1, achievement.Level)
	assert.Equal(t, "First Booking", achievement.Name)
}

func TestReviewIntake_Submit_Validation(t *testing.T) {
	env := setupTest(t)
	intake := setupReviewIntake(env)
	ctx := context.Background()

	cleaner := createTestCleaner(t, env.store)
	completed := createTestBooking(t, env.store, cleaner.ID, store.BookingStatusCompleted, time.Now().Add(-time.Hour), 0)
	pending := createTestBooking(t, env.store, cleaner.ID, store.BookingStatusPending, time.Now().Add(-time.Hour), 0)

	_, err := intake.Submit(ctx, SubmitInput{
		BookingID: completed.ID,
		Direction: store.RatingUserToCleaner,
		GivenByID: completed.CustomerID,
		Rating:    6,
	})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = intake.Submit(ctx, SubmitInput{
		BookingID: completed.ID,
		Direction: "sideways",
		GivenByID: completed.CustomerID,
		Rating:    4,
	})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = intake.Submit(ctx, SubmitInput{
		BookingID: pending.ID,
		Direction: store.RatingUserToCleaner,
		GivenByID: pending.CustomerID,
		Rating:    4,
	})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = intake.Submit(ctx, SubmitInput{
		BookingID: "missing",
		Direction: store.RatingUserToCleaner,
		GivenByID: "someone",
		Rating:    4,
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReviewIntake_Edit_RecomputesAverage(t *testing.T) {
	env := setupTest(t)
	intake := setupReviewIntake(env)
	ctx := context.Background()

	cleaner := createTestCleaner(t, env.store)
	booking := createTestBooking(t, env.store, cleaner.ID, store.BookingStatusCompleted, time.Now().Add(-time.Hour), 0)

	rating, err := intake.Submit(ctx, SubmitInput{
		BookingID: booking.ID,
		Direction: store.RatingUserToCleaner,
		GivenByID: booking.CustomerID,
		Rating:    2,
	})
	require.NoError(t, err)

	edited, err := intake.Edit(ctx, rating.ID, booking.CustomerID, 4, "better after a redo")
	require.NoError(t, err)
	assert.Equal(t, 4, edited.Rating)

	updated, err := env.store.Cleaners().Get(ctx, cleaner.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, updated.AverageRating)
}

func TestReviewIntake_Edit_WindowExpired(t *testing.T) {
	env := setupTest(t)
	intake := setupReviewIntake(env)
	ctx := context.Background()

	cleaner := createTestCleaner(t, env.store)
	booking := createTestBooking(t, env.store, cleaner.ID, store.BookingStatusCompleted, time.Now().Add(-time.Hour), 0)

	rating, err := intake.Submit(ctx, SubmitInput{
		BookingID: booking.ID,
		Direction: store.RatingUserToCleaner,
		GivenByID: booking.CustomerID,
		Rating:    3,
	})
	require.NoError(t, err)

	// Backdate the rating past the edit window
	db := env.store.GetDB().(*gorm.DB)
	require.NoError(t, db.Model(&store.Rating{}).Where("id = ?", rating.ID).
		Update("created_at", time.Now().Add(-8*24*time.Hour)).Error)

	_, err = intake.Edit(ctx, rating.ID, booking.CustomerID, 5, "changed my mind")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestReviewIntake_Edit_OnlyAuthor(t *testing.T) {
	env := setupTest(t)
	intake := setupReviewIntake(env)
	ctx := context.Background()

	cleaner := createTestCleaner(t, env.store)
	booking := createTestBooking(t, env.store, cleaner.ID, store.BookingStatusCompleted, time.Now().Add(-time.Hour), 0)

	rating, err := intake.Submit(ctx, SubmitInput{
		BookingID: booking.ID,
		Direction: store.RatingUserToCleaner,
		GivenByID: booking.CustomerID,
		Rating:    3,
	})
	require.NoError(t, err)

	_, err = intake.Edit(ctx, rating.ID, "someone-else", 5, "not mine")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
