package incentive

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"cleanscore-api/res/store"

	"github.com/rs/xid"
)

// ratingEditWindow is how long after submission a review stays editable.
const ratingEditWindow = 7 * 24 * time.Hour

// ReviewIntake accepts and edits ratings and keeps the cleaner aggregates
// (average, count, five-star streak) consistent with them. It is the entry
// point that feeds the bonus and achievement engines.
type ReviewIntake struct {
	*Config
	Bonuses      *BonusEngine
	Achievements *AchievementEngine
}

func NewReviewIntake(cfg *Config, bonuses *BonusEngine, achievements *AchievementEngine) *ReviewIntake {
	return &ReviewIntake{Config: cfg, Bonuses: bonuses, Achievements: achievements}
}

// SubmitInput is a new rating for a completed booking.
type SubmitInput struct {
	BookingID string
	Direction store.RatingDirection
	GivenByID string
	Rating    int
	Comment   string

	PunctualityRating     *int
	ProfessionalismRating *int
	QualityRating         *int
	CommunicationRating   *int
}

// Submit records a rating for a completed booking. One rating per
// (booking, direction) pair; a duplicate submission returns ErrConflict.
// For ratings received by a cleaner the aggregates update in the same
// transaction, then bonus and achievement checks run on the new state.
// Ratings given to a customer drive the customer's booking milestones.
func (ri *ReviewIntake) Submit(ctx context.Context, input SubmitInput) (*store.Rating, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5: %w", ErrInvalidArgument)
	}
	if input.Direction != store.RatingUserToCleaner && input.Direction != store.RatingCleanerToUser {
		return nil, fmt.Errorf("unknown rating direction %q: %w", input.Direction, ErrInvalidArgument)
	}

	booking, err := ri.Store.Bookings().Get(ctx, input.BookingID)
	if err != nil {
		return nil, fromStore(err)
	}
	if booking.Status != store.BookingStatusCompleted {
		return nil, fmt.Errorf("booking %s is not completed: %w", booking.ID, ErrInvalidArgument)
	}

	rating := &store.Rating{
		ID:                    fmt.Sprintf("rat_%s", xid.New().String()),
		BookingID:             booking.ID,
		Direction:             input.Direction,
		GivenByID:             input.GivenByID,
		Rating:                input.Rating,
		Comment:               input.Comment,
		PunctualityRating:     input.PunctualityRating,
		ProfessionalismRating: input.ProfessionalismRating,
		QualityRating:         input.QualityRating,
		CommunicationRating:   input.CommunicationRating,
		IsPublic:              true,
	}

	var snapshot MetricSnapshot
	var cleanerID string

	switch input.Direction {
	case store.RatingUserToCleaner:
		cleanerID = booking.CleanerID
		rating.CleanerID = &booking.CleanerID

		err = ri.atomicallyWithRetry(ctx, func(tx store.Store) error {
			if err := tx.Ratings().Create(ctx, rating); err != nil {
				return err
			}

			cleaner, err := tx.Cleaners().Get(ctx, cleanerID)
			if err != nil {
				return err
			}

			snapshot.PrevConsecutiveFiveStars = cleaner.ConsecutiveFiveStars
			if input.Rating == 5 {
				cleaner.ConsecutiveFiveStars++
			} else {
				cleaner.ConsecutiveFiveStars = 0
			}
			snapshot.ConsecutiveFiveStars = cleaner.ConsecutiveFiveStars

			avg, count, err := tx.Ratings().AverageForCleaner(ctx, cleanerID)
			if err != nil {
				return err
			}
			cleaner.AverageRating = math.Round(avg*100) / 100
			cleaner.ReviewCount = count

			snapshot.TotalBookings = cleaner.TotalBookings
			snapshot.PrevTotalBookings = cleaner.TotalBookings
			snapshot.AvgRating = cleaner.AverageRating

			return tx.Cleaners().Update(ctx, cleaner)
		})
	case store.RatingCleanerToUser:
		rating.UserID = &booking.CustomerID
		err = ri.Store.Atomically(ctx, func(tx store.Store) error {
			return tx.Ratings().Create(ctx, rating)
		})
	}
	if errors.Is(err, store.ErrUniqueViolation) {
		return nil, fmt.Errorf("booking %s already rated (%s): %w", booking.ID, input.Direction, ErrConflict)
	}
	if err != nil {
		return nil, fromStore(err)
	}

	switch input.Direction {
	case store.RatingUserToCleaner:
		if _, err := ri.Bonuses.CheckAndAward(ctx, cleanerID); err != nil {
			ri.Logger.Printf("Bonus check failed for cleaner %s: %s", cleanerID, err)
		}
		ri.Achievements.CheckAndUnlock(ctx, store.AchievementActorCleaner, cleanerID, snapshot)
	case store.RatingCleanerToUser:
		// Each completed booking is rated by its cleaner at most once, so
		// the customer's completed count at rating time drives their
		// booking milestones.
		completed, err := ri.Store.Bookings().CountCompletedByCustomer(ctx, booking.CustomerID)
		if err != nil {
			ri.Logger.Printf("Milestone check failed for user %s: %s", booking.CustomerID, err)
		} else {
			ri.Achievements.CheckAndUnlock(ctx, store.AchievementActorUser, booking.CustomerID, MetricSnapshot{
				TotalBookings:     completed,
				PrevTotalBookings: completed - 1,
			})
		}
	}

	ri.Logger.Printf("Recorded %d-star rating %s for booking %s (%s)", rating.Rating, rating.ID, booking.ID, input.Direction)
	return rating, nil
}

// Edit updates a rating's stars and comment within 7 days of submission.
// For ratings received by a cleaner the average is recomputed; streak
// state is left as the original submission set it.
func (ri *ReviewIntake) Edit(ctx context.Context, ratingID, editorID string, newRating int, newComment string) (*store.Rating, error) {
	if newRating < 1 || newRating > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5: %w", ErrInvalidArgument)
	}

	rating, err := ri.Store.Ratings().Get(ctx, ratingID)
	if err != nil {
		return nil, fromStore(err)
	}
	if rating.GivenByID != editorID {
		return nil, fmt.Errorf("rating %s was given by someone else: %w", ratingID, ErrInvalidArgument)
	}
	if time.Since(rating.CreatedAt) > ratingEditWindow {
		return nil, fmt.Errorf("rating %s is past the 7-day edit window: %w", ratingID, ErrInvalidArgument)
	}

	err = ri.atomicallyWithRetry(ctx, func(tx store.Store) error {
		current, err := tx.Ratings().Get(ctx, ratingID)
		if err != nil {
			return err
		}
		current.Rating = newRating
		current.Comment = newComment
		if err := tx.Ratings().Update(ctx, current); err != nil {
			return err
		}
		rating = current

		if current.Direction != store.RatingUserToCleaner || current.CleanerID == nil {
			return nil
		}

		cleaner, err := tx.Cleaners().Get(ctx, *current.CleanerID)
		if err != nil {
			return err
		}
		avg, count, err := tx.Ratings().AverageForCleaner(ctx, cleaner.ID)
		if err != nil {
			return err
		}
		cleaner.AverageRating = math.Round(avg*100) / 100
		cleaner.ReviewCount = count
		return tx.Cleaners().Update(ctx, cleaner)
	})
	if err != nil {
		return nil, fromStore(err)
	}

	ri.Logger.Printf("Edited rating %s to %d stars", ratingID, newRating)
	return rating, nil
}
