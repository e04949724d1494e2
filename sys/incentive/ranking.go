package incentive

import (
	"context"
	"fmt"
	"math"
	"sort"

	"cleanscore-api/res/cache"
	"cleanscore-api/res/notification"
	"cleanscore-api/res/store"
	"cleanscore-api/sys/metrics"
)

// topPercentileFraction is the share of ranked cleaners that earns the
// top-percentile mark each month (at least one when anyone ranks at all).
const topPercentileFraction = 0.05

// RankingEngine assigns monthly ranks and serves leaderboard reads.
type RankingEngine struct{ *Config }

func NewRankingEngine(cfg *Config) *RankingEngine {
	return &RankingEngine{cfg}
}

// RankingEntry is one leaderboard row.
type RankingEntry struct {
	Position        int     `json:"position"`
	CleanerID       string  `json:"cleanerId"`
	Region          string  `json:"region"`
	AgilityScore    float64 `json:"agilityScore"`
	AverageRating   float64 `json:"averageRating"`
	TotalBookings   int     `json:"totalBookings"`
	TopCleanerBadge bool    `json:"topCleanerBadge"`
}

// GradeCard is the public report card for a cleaner.
type GradeCard struct {
	CleanerID        string  `json:"cleanerId"`
	Grade            string  `json:"grade"`
	AgilityScore     float64 `json:"agilityScore"`
	AverageRating    float64 `json:"averageRating"`
	ReputationPoints int     `json:"reputationPoints"`
	ReputationLabel  string  `json:"reputationLabel"`
	TopCleanerBadge  bool    `json:"topCleanerBadge"`
}

// CalculateMonthly ranks every snapshot of the period by agility score,
// breaking ties on the cleaner's all-time average rating, writes
// positions back and marks the top 5% (minimum one). Rank writes land
// atomically and leaderboard caches are invalidated afterwards.
func (e *RankingEngine) CalculateMonthly(ctx context.Context, year, month int) (int, error) {
	snapshots, err := e.Store.CleanerMetrics().ListForPeriod(ctx, year, month)
	if err != nil {
		return 0, fromStore(err)
	}
	if len(snapshots) == 0 {
		return 0, nil
	}

	cleanerRating := func(m *store.CleanerMetrics) float64 {
		if m.Cleaner == nil {
			return 0
		}
		return m.Cleaner.AverageRating
	}
	sort.SliceStable(snapshots, func(i, j int) bool {
		if snapshots[i].AgilityScore != snapshots[j].AgilityScore {
			return snapshots[i].AgilityScore > snapshots[j].AgilityScore
		}
		return cleanerRating(snapshots[i]) > cleanerRating(snapshots[j])
	})

	topCount := int(math.Ceil(float64(len(snapshots)) * topPercentileFraction))
	if topCount < 1 {
		topCount = 1
	}

	err = e.Store.Atomically(ctx, func(tx store.Store) error {
		for i, snapshot := range snapshots {
			snapshot.Ranking = i + 1
			snapshot.TopPercentile = i < topCount
			if err := tx.CleanerMetrics().Update(ctx, snapshot); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fromStore(err)
	}

	e.cacheInvalidate(ctx, "ranking:*", "grade:*")

	metrics.RankingRunsTotal.Inc()
	for _, snapshot := range snapshots[:topCount] {
		e.notify(ctx, snapshot.CleanerID, "Top cleaner!",
			fmt.Sprintf("You ranked #%d for %d-%02d. Keep it up!", snapshot.Ranking, year, month),
			notification.TypeRankingRecalculate)
	}
	e.Logger.Printf("Ranked %d cleaners for %d-%02d (%d top percentile)", len(snapshots), year, month, topCount)
	return len(snapshots), nil
}

// GlobalRanking returns the platform-wide leaderboard. Only active and
// verified cleaners rank; badge holders sort first, then agility score,
// average rating and booking volume. Results are cached briefly.
func (e *RankingEngine) GlobalRanking(ctx context.Context, limit, offset int) ([]*RankingEntry, error) {
	key := fmt.Sprintf("ranking:global:%d:%d", limit, offset)
	var cached []*RankingEntry
	if e.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	entries, err := e.listRanking(ctx, store.CleanerFilters{
		Statuses: store.RankableStatuses(),
		OrderBy:  "top_cleaner_badge DESC, agility_score DESC, average_rating DESC, total_bookings DESC",
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return nil, err
	}

	e.cacheSet(ctx, key, entries, cache.TTLMedium)
	return entries, nil
}

// RegionalRanking returns the leaderboard restricted to a region
// (case-insensitive substring match).
func (e *RankingEngine) RegionalRanking(ctx context.Context, region string, limit, offset int) ([]*RankingEntry, error) {
	if region == "" {
		return nil, fmt.Errorf("region is required: %w", ErrInvalidArgument)
	}

	key := fmt.Sprintf("ranking:region:%s:%d:%d", region, limit, offset)
	var cached []*RankingEntry
	if e.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	entries, err := e.listRanking(ctx, store.CleanerFilters{
		Statuses: store.RankableStatuses(),
		Region:   &region,
		OrderBy:  "top_cleaner_badge DESC, agility_score DESC, average_rating DESC, total_bookings DESC",
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return nil, err
	}

	e.cacheSet(ctx, key, entries, cache.TTLMedium)
	return entries, nil
}

func (e *RankingEngine) listRanking(ctx context.Context, filters store.CleanerFilters) ([]*RankingEntry, error) {
	cleaners, err := e.Store.Cleaners().List(ctx, filters)
	if err != nil {
		return nil, fromStore(err)
	}

	entries := make([]*RankingEntry, 0, len(cleaners))
	for i, c := range cleaners {
		entries = append(entries, &RankingEntry{
			Position:        filters.Offset + i + 1,
			CleanerID:       c.ID,
			Region:          c.Region,
			AgilityScore:    c.AgilityScore,
			AverageRating:   c.AverageRating,
			TotalBookings:   c.TotalBookings,
			TopCleanerBadge: c.TopCleanerBadge,
		})
	}
	return entries, nil
}

// CleanerRank returns a cleaner's current global position among rankable
// cleaners, counting by stored agility score.
func (e *RankingEngine) CleanerRank(ctx context.Context, cleanerID string) (int, error) {
	cleaner, err := e.Store.Cleaners().Get(ctx, cleanerID)
	if err != nil {
		return 0, fromStore(err)
	}
	if !cleaner.IsRankable() {
		return 0, nil
	}

	better, err := e.Store.Cleaners().CountWithHigherAgility(ctx, cleaner.AgilityScore, store.RankableStatuses())
	if err != nil {
		return 0, fromStore(err)
	}
	return better + 1, nil
}

// Grade returns a cleaner's report card, cached for a day.
func (e *RankingEngine) Grade(ctx context.Context, cleanerID string) (*GradeCard, error) {
	key := fmt.Sprintf("grade:%s", cleanerID)
	var cached GradeCard
	if e.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	cleaner, err := e.Store.Cleaners().Get(ctx, cleanerID)
	if err != nil {
		return nil, fromStore(err)
	}

	card := &GradeCard{
		CleanerID:        cleaner.ID,
		Grade:            GradeForScore(cleaner.AgilityScore),
		AgilityScore:     cleaner.AgilityScore,
		AverageRating:    cleaner.AverageRating,
		ReputationPoints: cleaner.ReputationPoints,
		ReputationLabel:  reputationLabel(cleaner.ReputationPoints),
		TopCleanerBadge:  cleaner.TopCleanerBadge,
	}

	e.cacheSet(ctx, key, card, cache.TTLVeryLong)
	return card, nil
}

// GradeForScore maps a 0-10 agility score onto a letter grade.
func GradeForScore(score float64) string {
	switch {
	case score >= 9:
		return "A"
	case score >= 8:
		return "B"
	case score >= 7:
		return "C"
	case score >= 6:
		return "D"
	default:
		return "F"
	}
}

func reputationLabel(points int) string {
	switch {
	case points >= 80:
		return "Excellent"
	case points >= 60:
		return "Good"
	default:
		return "Needs Improvement"
	}
}
