package incentive

import (
	"context"
	"errors"
	"fmt"

	"cleanscore-api/res/notification"
	"cleanscore-api/res/store"
	"cleanscore-api/sys/metrics"

	"github.com/google/uuid"
)

// achievementDef is a catalog entry: display fields plus the grants an
// unlock carries.
type achievementDef struct {
	Name          string
	Description   string
	Icon          string
	BonusPoints   int
	BonusEarnings float64
}

var userAchievements = map[string]achievementDef{
	"first_booking": {
		Name:        "First Booking",
		Description: "You made your first booking on the platform!",
		Icon:        "🎉",
		BonusPoints: 5,
	},
	"five_bookings": {
		Name:        "5 Bookings",
		Description: "You have booked 5 cleanings. A loyal customer!",
		Icon:        "⭐",
		BonusPoints: 10,
	},
	"fifty_bookings": {
		Name:        "50 Bookings",
		Description: "Congratulations! You have made 50 bookings.",
		Icon:        "🏆",
		BonusPoints: 25,
	},
	"hundred_bookings": {
		Name:        "100 Bookings",
		Description: "Hundredth booking unlocked! You are a power user.",
		Icon:        "👑",
		BonusPoints: 50,
	},
	"perfect_rating": {
		Name:        "Perfect Rating",
		Description: "5 consecutive five-star reviews!",
		Icon:        "✨",
		BonusPoints: 15,
	},
	"trusted_user": {
		Name:        "Trusted User",
		Description: "Kept reputation above 90 for 30 days.",
		Icon:        "🤝",
		BonusPoints: 20,
	},
	"bonus_hunter": {
		Name:        "Bonus Hunter",
		Description: "Earned 10 bonuses in a single month.",
		Icon:        "🎁",
		BonusPoints: 25,
	},
	"power_user": {
		Name:        "Power User",
		Description: "Reached maximum level in every metric.",
		Icon:        "⚡",
		BonusPoints: 50,
	},
}

var cleanerAchievements = map[string]achievementDef{
	"first_booking": {
		Name:          "First Client",
		Description:   "You completed your first booking!",
		Icon:          "🎉",
		BonusPoints:   10,
		BonusEarnings: 0.05,
	},
	"five_star_master": {
		Name:          "Five Star Master",
		Description:   "10 consecutive five-star reviews!",
		Icon:          "⭐",
		BonusPoints:   20,
		BonusEarnings: 0.10,
	},
	"speed_demon": {
		Name:          "Speed Demon",
		Description:   "Responded in under 5 minutes for 30 straight days.",
		Icon:          "🚀",
		BonusPoints:   15,
		BonusEarnings: 0.05,
	},
	"completion_master": {
		Name:          "Completion Master",
		Description:   "98% booking completion rate.",
		Icon:          "✅",
		BonusPoints:   25,
		BonusEarnings: 0.15,
	},
	"top_performer": {
		Name:          "Top Performer",
		Description:   "Top 5% of cleaners on the platform!",
		Icon:          "🏆",
		BonusPoints:   50,
		BonusEarnings: 0.25,
	},
	"master_cleaner": {
		Name:          "Master Cleaner",
		Description:   "Reached 100 bookings with 4.8+ stars.",
		Icon:          "👑",
		BonusPoints:   50,
		BonusEarnings: 0.30,
	},
	"reputation_guardian": {
		Name:          "Reputation Guardian",
		Description:   "Kept 100 reputation points for 60 days.",
		Icon:          "🛡️",
		BonusPoints:   30,
		BonusEarnings: 0.10,
	},
	"specialist": {
		Name:          "Specialist",
		Description:   "Offers 5 different service types.",
		Icon:          "🎯",
		BonusPoints:   20,
		BonusEarnings: 0.08,
	},
}

// TotalEarningsBonusCapPercent bounds the stacked earnings bonus.
const TotalEarningsBonusCapPercent = 30.0

func catalogFor(actorType store.AchievementActor) map[string]achievementDef {
	if actorType == store.AchievementActorCleaner {
		return cleanerAchievements
	}
	return userAchievements
}

// AchievementEngine unlocks tiered badges for users and cleaners.
type AchievementEngine struct{ *Config }

func NewAchievementEngine(cfg *Config) *AchievementEngine {
	return &AchievementEngine{cfg}
}

// Unlock grants an achievement to an actor. A first unlock creates the
// record at level 1; re-unlocking the same type raises the level up to
// the cap, after which the call is a no-op on the level.
func (e *AchievementEngine) Unlock(ctx context.Context, actorType store.AchievementActor, actorID, achievementType, awardedFor string) (*store.Achievement, error) {
	def, ok := catalogFor(actorType)[achievementType]
	if !ok {
		return nil, fmt.Errorf("unknown %s achievement type %q: %w", actorType, achievementType, ErrInvalidArgument)
	}

	var result *store.Achievement
	err := e.atomicallyWithRetry(ctx, func(tx store.Store) error {
		existing, err := tx.Achievements().GetByActorAndType(ctx, actorType, actorID, achievementType)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}

		if existing != nil {
			if existing.Level < store.AchievementLevelMax {
				existing.Level++
			}
			existing.Progress = 0
			existing.BonusPoints = def.BonusPoints
			existing.BonusEarnings = def.BonusEarnings
			if err := tx.Achievements().Update(ctx, existing); err != nil {
				return err
			}
			result = existing
			return nil
		}

		created := &store.Achievement{
			ID:            uuid.New().String(),
			ActorType:     actorType,
			ActorID:       actorID,
			Type:          achievementType,
			Name:          def.Name,
			Description:   def.Description,
			Icon:          def.Icon,
			Level:         1,
			BonusPoints:   def.BonusPoints,
			BonusEarnings: def.BonusEarnings,
			AwardedFor:    awardedFor,
			AwardedBy:     "system",
		}
		if err := tx.Achievements().Create(ctx, created); err != nil {
			return err
		}
		result = created
		return nil
	})
	if err != nil {
		return nil, fromStore(err)
	}

	metrics.AchievementsUnlockedTotal.WithLabelValues(string(actorType)).Inc()
	e.notify(ctx, actorID, "Achievement unlocked!",
		fmt.Sprintf("%s %s (level %d): %s", result.Icon, result.Name, result.Level, result.Description),
		notification.TypeAchievementUnlock)
	e.Logger.Printf("Unlocked %s achievement %s (level %d) for %s", actorType, achievementType, result.Level, actorID)
	return result, nil
}

// MetricSnapshot carries the before/after values CheckAndUnlock compares.
// Milestone achievements fire when the threshold is crossed, so a metric
// jumping past a milestone still unlocks it.
type MetricSnapshot struct {
	TotalBookings     int
	PrevTotalBookings int

	ConsecutiveFiveStars     int
	PrevConsecutiveFiveStars int

	CompletionRate float64 // 0-1
	AvgRating      float64
	TopPerformer   bool
}

var bookingMilestones = []struct {
	count int
	typ   string
}{
	{1, "first_booking"},
	{5, "five_bookings"},
	{50, "fifty_bookings"},
	{100, "hundred_bookings"},
}

// CheckAndUnlock evaluates a metric change for an actor and unlocks every
// achievement the change earns. Unlock failures are logged and skipped so
// one bad rule does not block the rest.
func (e *AchievementEngine) CheckAndUnlock(ctx context.Context, actorType store.AchievementActor, actorID string, metric MetricSnapshot) {
	crossed := func(milestone int) bool {
		return metric.PrevTotalBookings < milestone && metric.TotalBookings >= milestone
	}

	unlock := func(achievementType, awardedFor string) {
		if _, err := e.Unlock(ctx, actorType, actorID, achievementType, awardedFor); err != nil {
			e.Logger.Printf("Skipping %s achievement %s for %s: %s", actorType, achievementType, actorID, err)
		}
	}

	if actorType == store.AchievementActorUser {
		for _, m := range bookingMilestones {
			if crossed(m.count) {
				unlock(m.typ, "booking_milestone")
			}
		}
		if metric.PrevConsecutiveFiveStars < 5 && metric.ConsecutiveFiveStars >= 5 {
			unlock("perfect_rating", "consecutive_reviews")
		}
		return
	}

	if crossed(1) {
		unlock("first_booking", "booking_milestone")
	}
	if metric.PrevConsecutiveFiveStars < streakLength && metric.ConsecutiveFiveStars >= streakLength {
		unlock("five_star_master", "consecutive_reviews")
	}
	if metric.CompletionRate >= 0.98 && metric.TotalBookings > 0 {
		unlock("completion_master", "completion_rate")
	}
	if metric.TopPerformer {
		unlock("top_performer", "top_performer_ranking")
	}
	if metric.TotalBookings >= 100 && metric.AvgRating >= 4.8 {
		unlock("master_cleaner", "volume_and_rating")
	}
}

// ListForActor returns an actor's achievements, newest first.
func (e *AchievementEngine) ListForActor(ctx context.Context, actorType store.AchievementActor, actorID string) ([]*store.Achievement, error) {
	achievements, err := e.Store.Achievements().ListByActor(ctx, actorType, actorID)
	if err != nil {
		return nil, fromStore(err)
	}
	return achievements, nil
}

// MainBadges returns a cleaner's five highest-level achievements for
// profile display.
func (e *AchievementEngine) MainBadges(ctx context.Context, cleanerID string) ([]*store.Achievement, error) {
	badges, err := e.Store.Achievements().TopByLevel(ctx, store.AchievementActorCleaner, cleanerID, 5)
	if err != nil {
		return nil, fromStore(err)
	}
	return badges, nil
}

// TotalEarningsBonus sums a cleaner's achievement earnings bonuses as a
// percentage, capped at 30%.
func (e *AchievementEngine) TotalEarningsBonus(ctx context.Context, cleanerID string) (float64, error) {
	achievements, err := e.Store.Achievements().ListByActor(ctx, store.AchievementActorCleaner, cleanerID)
	if err != nil {
		return 0, fromStore(err)
	}

	var total float64
	for _, a := range achievements {
		total += a.BonusEarnings * 100
	}
	if total > TotalEarningsBonusCapPercent {
		total = TotalEarningsBonusCapPercent
	}
	return total, nil
}
