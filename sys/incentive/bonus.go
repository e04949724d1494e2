package incentive

import (
	"context"
	"fmt"
	"time"

	"cleanscore-api/res/notification"
	"cleanscore-api/res/payout"
	"cleanscore-api/res/store"
	"cleanscore-api/sys/metrics"

	"github.com/rs/xid"
)

const (
	streakLength      = 10
	badgeDurationDays = 30
)

// BonusEngine awards and pays out streak bonuses.
type BonusEngine struct{ *Config }

func NewBonusEngine(cfg *Config) *BonusEngine {
	return &BonusEngine{cfg}
}

// CheckAndAward awards a streak bonus if the cleaner's 10 most recent
// reviews are all five stars. Awarding grants R$100, a 30-day top cleaner
// badge and resets the streak counter, so a given streak pays out once.
// Returns nil without error when the cleaner is not eligible.
func (e *BonusEngine) CheckAndAward(ctx context.Context, cleanerID string) (*store.CleanerBonus, error) {
	cleaner, err := e.Store.Cleaners().Get(ctx, cleanerID)
	if err != nil {
		return nil, fromStore(err)
	}

	if cleaner.ConsecutiveFiveStars < streakLength {
		return nil, nil
	}

	latest, err := e.Store.Ratings().LatestForCleaner(ctx, cleanerID, streakLength)
	if err != nil {
		return nil, fromStore(err)
	}
	if len(latest) < streakLength {
		return nil, nil
	}
	for _, r := range latest {
		if r.Rating != 5 {
			return nil, nil
		}
	}

	bonus := &store.CleanerBonus{
		ID:          fmt.Sprintf("bon_%s", xid.New().String()),
		CleanerID:   cleanerID,
		AmountCents: store.StreakBonusAmountCents,
		Reason:      store.BonusReasonTenConsecutiveFiveStars,
		Status:      store.BonusStatusPending,
	}

	badgeUntil := time.Now().AddDate(0, 0, badgeDurationDays)

	var awarded bool
	err = e.atomicallyWithRetry(ctx, func(tx store.Store) error {
		awarded = false

		current, err := tx.Cleaners().Get(ctx, cleanerID)
		if err != nil {
			return err
		}
		// Re-check under the transaction: a concurrent award may have
		// consumed the streak after the read above.
		if current.ConsecutiveFiveStars < streakLength {
			return nil
		}

		if err := tx.CleanerBonuses().Create(ctx, bonus); err != nil {
			return err
		}
		current.TopCleanerBadge = true
		current.TopCleanerUntil = &badgeUntil
		current.TotalBonusEarnedCents += bonus.AmountCents
		current.ConsecutiveFiveStars = 0
		if err := tx.Cleaners().Update(ctx, current); err != nil {
			return err
		}
		awarded = true
		return nil
	})
	if err != nil {
		return nil, fromStore(err)
	}
	if !awarded {
		return nil, nil
	}

	metrics.BonusesAwardedTotal.Inc()
	e.notify(ctx, cleanerID, "Streak bonus earned!",
		fmt.Sprintf("You earned a R$%.2f bonus for 10 consecutive five-star reviews. Congratulations!", float64(bonus.AmountCents)/100),
		notification.TypeBonusAwarded)
	e.Logger.Printf("Awarded streak bonus %s to cleaner %s", bonus.ID, cleanerID)
	return bonus, nil
}

// Transfer pays a pending bonus out to the cleaner's registered payout
// destination. The status flips to transferred before the gateway call,
// guarded at the database level, so a concurrent transfer of the same
// bonus loses the flip and never reaches the gateway. A failed gateway
// call reverts the flip.
func (e *BonusEngine) Transfer(ctx context.Context, bonusID string) (*store.CleanerBonus, error) {
	bonus, err := e.Store.CleanerBonuses().Get(ctx, bonusID)
	if err != nil {
		return nil, fromStore(err)
	}
	if bonus.Status == store.BonusStatusTransferred {
		return nil, fmt.Errorf("bonus %s already transferred: %w", bonusID, ErrConflict)
	}

	cleaner, err := e.Store.Cleaners().Get(ctx, bonus.CleanerID)
	if err != nil {
		return nil, fromStore(err)
	}
	if !cleaner.HasPayoutDestination() {
		return nil, fmt.Errorf("cleaner %s: %w", cleaner.ID, ErrMissingPayoutDetails)
	}

	now := time.Now()
	flipped, err := e.Store.CleanerBonuses().MarkTransferred(ctx, bonusID, now)
	if err != nil {
		return nil, fromStore(err)
	}
	if !flipped {
		// Raced with a concurrent transfer that claimed the bonus first.
		return nil, fmt.Errorf("bonus %s already transferred: %w", bonusID, ErrConflict)
	}

	var dest payout.Destination
	if cleaner.PixKey != nil {
		dest.PixKey = *cleaner.PixKey
	}
	if cleaner.BankAccount != nil {
		dest.BankAccount = *cleaner.BankAccount
	}
	ok, err := e.Payouts.Transfer(ctx, dest, bonus.AmountCents)
	if err != nil {
		e.revertTransfer(ctx, bonusID)
		metrics.BonusesTransferredTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("transferring bonus %s: %w", bonusID, err)
	}
	if !ok {
		e.revertTransfer(ctx, bonusID)
		metrics.BonusesTransferredTotal.WithLabelValues("declined").Inc()
		return nil, fmt.Errorf("payout declined for bonus %s: %w", bonusID, ErrConflict)
	}

	bonus.Status = store.BonusStatusTransferred
	bonus.TransferredAt = &now

	metrics.BonusesTransferredTotal.WithLabelValues("success").Inc()
	e.notify(ctx, cleaner.ID, "Bonus transferred",
		fmt.Sprintf("Your R$%.2f bonus was transferred to your account.", float64(bonus.AmountCents)/100),
		notification.TypeBonusTransferred)
	e.Logger.Printf("Transferred bonus %s to cleaner %s", bonusID, cleaner.ID)
	return bonus, nil
}

func (e *BonusEngine) revertTransfer(ctx context.Context, bonusID string) {
	if err := e.Store.CleanerBonuses().RevertTransfer(ctx, bonusID); err != nil {
		e.Logger.Printf("Failed to revert transfer of bonus %s: %s", bonusID, err)
	}
}

// History returns a cleaner's bonuses, newest first. A limit of zero
// returns all of them.
func (e *BonusEngine) History(ctx context.Context, cleanerID string, limit int) ([]*store.CleanerBonus, error) {
	if _, err := e.Store.Cleaners().Get(ctx, cleanerID); err != nil {
		return nil, fromStore(err)
	}
	bonuses, err := e.Store.CleanerBonuses().ListByCleaner(ctx, cleanerID, limit)
	if err != nil {
		return nil, fromStore(err)
	}
	return bonuses, nil
}

// TotalEarned returns the sum in cents of a cleaner's transferred bonuses.
func (e *BonusEngine) TotalEarned(ctx context.Context, cleanerID string) (int64, error) {
	total, err := e.Store.CleanerBonuses().SumTransferred(ctx, cleanerID)
	if err != nil {
		return 0, fromStore(err)
	}
	return total, nil
}
