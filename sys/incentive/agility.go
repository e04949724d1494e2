package incentive

import (
	"context"
	"math"
	"time"

	"cleanscore-api/res/store"
	"cleanscore-api/sys/metrics"

	"github.com/google/uuid"
)

// Agility score composition: acceptance 30%, response time 40%,
// completion 30%. A 300-second (5-minute) response is the reference
// "perfect" time; faster responses cannot exceed the cap.
const (
	acceptanceWeight = 0.3
	responseWeight   = 0.4
	completionWeight = 0.3

	referenceResponseSeconds = 300.0
	componentScoreMax        = 10.0
)

// AgilityScorer computes and persists monthly performance snapshots.
type AgilityScorer struct {
	*Config
	Achievements *AchievementEngine
}

func NewAgilityScorer(cfg *Config, achievements *AchievementEngine) *AgilityScorer {
	return &AgilityScorer{Config: cfg, Achievements: achievements}
}

// Compute recalculates the monthly snapshot for a cleaner from the
// bookings created within the calendar month, persists it (upsert keyed by
// cleaner/year/month) and mirrors the score and completed-booking total
// onto the cleaner row. The write is all-or-nothing; afterwards the new
// completion rate, booking total and top-percentile standing feed the
// achievement checks.
func (s *AgilityScorer) Compute(ctx context.Context, cleanerID string, year, month int) (*store.CleanerMetrics, error) {
	cleaner, err := s.Store.Cleaners().Get(ctx, cleanerID)
	if err != nil {
		return nil, fromStore(err)
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)

	bookings, err := s.Store.Bookings().GetByCleanerCreatedBetween(ctx, cleanerID, start, end)
	if err != nil {
		return nil, fromStore(err)
	}
	ratings, err := s.Store.Ratings().ForCleanerCreatedBetween(ctx, cleanerID, start, end)
	if err != nil {
		return nil, fromStore(err)
	}

	snapshot := s.buildSnapshot(cleanerID, year, month, bookings, ratings)

	topPercentile, err := s.isTopPercentile(ctx, snapshot.AgilityScore)
	if err != nil {
		return nil, err
	}
	snapshot.TopPercentile = topPercentile

	var progress MetricSnapshot
	err = s.atomicallyWithRetry(ctx, func(tx store.Store) error {
		if err := tx.CleanerMetrics().Upsert(ctx, snapshot); err != nil {
			return err
		}

		// Mirror the latest score and booking total for fast lookup
		current, err := tx.Cleaners().Get(ctx, cleanerID)
		if err != nil {
			return err
		}
		completed, err := tx.Bookings().CountCompletedByCleaner(ctx, cleanerID)
		if err != nil {
			return err
		}

		progress = MetricSnapshot{
			TotalBookings:            completed,
			PrevTotalBookings:        current.TotalBookings,
			ConsecutiveFiveStars:     current.ConsecutiveFiveStars,
			PrevConsecutiveFiveStars: current.ConsecutiveFiveStars,
			CompletionRate:           snapshot.CompletionRate / 100,
			AvgRating:                current.AverageRating,
			TopPerformer:             snapshot.TopPercentile,
		}

		current.AgilityScore = snapshot.AgilityScore
		current.TotalBookings = completed
		return tx.Cleaners().Update(ctx, current)
	})
	if err != nil {
		return nil, fromStore(err)
	}

	if s.Achievements != nil {
		s.Achievements.CheckAndUnlock(ctx, store.AchievementActorCleaner, cleanerID, progress)
	}

	metrics.AgilityScoreComputed.Observe(snapshot.AgilityScore)
	s.Logger.Printf("Computed agility for cleaner %s (%d-%02d): %.1f/10", cleaner.ID, year, month, snapshot.AgilityScore)
	return snapshot, nil
}

func (s *AgilityScorer) buildSnapshot(cleanerID string, year, month int, bookings []*store.Booking, ratings []*store.Rating) *store.CleanerMetrics {
	snapshot := &store.CleanerMetrics{
		ID:        uuid.New().String(),
		CleanerID: cleanerID,
		Year:      year,
		Month:     month,
	}

	snapshot.TotalCalls = len(bookings)
	var responseSum float64
	var responded int
	for _, b := range bookings {
		if b.Status != store.BookingStatusCancelled {
			snapshot.AcceptedCalls++
		}
		switch b.Status {
		case store.BookingStatusCompleted:
			snapshot.CompletedJobs++
		case store.BookingStatusCancelled:
			snapshot.CancelledJobs++
		case store.BookingStatusNoShow:
			snapshot.NoShowJobs++
		}
		if seconds, ok := b.ResponseSeconds(); ok {
			responseSum += seconds
			responded++
		}
	}
	snapshot.RejectedCalls = snapshot.TotalCalls - snapshot.AcceptedCalls

	if snapshot.TotalCalls > 0 {
		snapshot.AcceptanceRate = roundTo1(float64(snapshot.AcceptedCalls) / float64(snapshot.TotalCalls) * 100)
	}
	if snapshot.AcceptedCalls > 0 {
		snapshot.CompletionRate = roundTo1(float64(snapshot.CompletedJobs) / float64(snapshot.AcceptedCalls) * 100)
	}
	if responded > 0 {
		snapshot.AvgResponseTime = math.Round(responseSum / float64(responded))
	}

	var ratingSum int
	for _, r := range ratings {
		ratingSum += r.Rating
		if r.Rating == 5 {
			snapshot.FiveStarReviews++
		}
	}
	snapshot.TotalReviewsReceived = len(ratings)
	if len(ratings) > 0 {
		snapshot.AvgRating = roundTo1(float64(ratingSum) / float64(len(ratings)))
	}

	snapshot.AgilityScore = agilityScore(snapshot)
	return snapshot
}

// agilityScore computes the 0-10 composite. A month with no calls scores
// zero rather than rewarding the empty response average.
func agilityScore(m *store.CleanerMetrics) float64 {
	if m.TotalCalls == 0 {
		return 0
	}

	acceptanceScore := m.AcceptanceRate / 100 * componentScoreMax
	responseScore := math.Min(componentScoreMax, referenceResponseSeconds/math.Max(m.AvgResponseTime, 1)*componentScoreMax)
	completionScore := m.CompletionRate / 100 * componentScoreMax

	score := acceptanceScore*acceptanceWeight + responseScore*responseWeight + completionScore*completionWeight
	return roundTo1(score)
}

// isTopPercentile reports whether the score places the cleaner in the
// best 5% platform-wide, comparing against stored agility scores.
func (s *AgilityScorer) isTopPercentile(ctx context.Context, score float64) (bool, error) {
	total, err := s.Store.Cleaners().Count(ctx, store.CleanerFilters{})
	if err != nil {
		return false, fromStore(err)
	}
	if total == 0 {
		return false, nil
	}

	better, err := s.Store.Cleaners().CountWithHigherAgility(ctx, score, nil)
	if err != nil {
		return false, fromStore(err)
	}

	percentile := float64(better) / float64(total) * 100
	return percentile <= 5, nil
}

// History returns a cleaner's most recent monthly snapshots, newest first.
func (s *AgilityScorer) History(ctx context.Context, cleanerID string, months int) ([]*store.CleanerMetrics, error) {
	if _, err := s.Store.Cleaners().Get(ctx, cleanerID); err != nil {
		return nil, fromStore(err)
	}
	history, err := s.Store.CleanerMetrics().History(ctx, cleanerID, months)
	if err != nil {
		return nil, fromStore(err)
	}
	return history, nil
}

// TopCleaners returns the top-percentile snapshots for a period ordered by
// agility score descending.
func (s *AgilityScorer) TopCleaners(ctx context.Context, year, month, limit int) ([]*store.CleanerMetrics, error) {
	top, err := s.Store.CleanerMetrics().TopPercentile(ctx, year, month, limit)
	if err != nil {
		return nil, fromStore(err)
	}
	return top, nil
}

func roundTo1(v float64) float64 {
	return math.Round(v*10) / 10
}
