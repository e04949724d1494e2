package incentive

import (
	"context"
	"fmt"
	"time"

	"cleanscore-api/res/notification"
	"cleanscore-api/res/store"
	"cleanscore-api/sys/metrics"

	"github.com/rs/xid"
)

// penalty pairs a reputation deduction with a temporary block.
type penalty struct {
	points    int
	blockDays int
}

var penaltyTable = map[store.PunishmentType]penalty{
	store.PunishmentTypeNoShow:           {points: 25, blockDays: 2},
	store.PunishmentTypeCancellationBoth: {points: 25, blockDays: 2},
	store.PunishmentTypeLowRating:        {points: 15, blockDays: 1},
}

// PunishmentEngine applies, removes and expires reputation penalties.
type PunishmentEngine struct{ *Config }

func NewPunishmentEngine(cfg *Config) *PunishmentEngine {
	return &PunishmentEngine{cfg}
}

// ApplyInput carries the context of a penalty beyond its type.
type ApplyInput struct {
	CleanerID        string
	Type             store.PunishmentType
	Reason           string
	Description      string
	RelatedBookingID *string
	RelatedDisputeID *string
	GivenByAdmin     bool
	AdminID          *string
}

// Apply issues a penalty: deducts the configured reputation points
// (flooring at zero), blocks the cleaner until the configured deadline and
// suspends any cleaner whose reputation reaches zero. Deduction, block and
// suspension land atomically.
func (e *PunishmentEngine) Apply(ctx context.Context, input ApplyInput) (*store.CleanerPunishment, error) {
	pen, ok := penaltyTable[input.Type]
	if !ok {
		return nil, fmt.Errorf("unknown punishment type %q: %w", input.Type, ErrInvalidArgument)
	}
	if input.Reason == "" {
		return nil, fmt.Errorf("reason is required: %w", ErrInvalidArgument)
	}

	punishment := &store.CleanerPunishment{
		ID:               fmt.Sprintf("pun_%s", xid.New().String()),
		CleanerID:        input.CleanerID,
		Type:             input.Type,
		Reason:           input.Reason,
		Description:      input.Description,
		PointsDeducted:   pen.points,
		State:            store.PunishmentStateActive,
		BlockedUntil:     time.Now().AddDate(0, 0, pen.blockDays),
		RelatedBookingID: input.RelatedBookingID,
		RelatedDisputeID: input.RelatedDisputeID,
		GivenByAdmin:     input.GivenByAdmin,
		AdminID:          input.AdminID,
	}

	var suspended bool
	err := e.atomicallyWithRetry(ctx, func(tx store.Store) error {
		suspended = false

		cleaner, err := tx.Cleaners().Get(ctx, input.CleanerID)
		if err != nil {
			return err
		}

		if err := tx.CleanerPunishments().Create(ctx, punishment); err != nil {
			return err
		}

		cleaner.ReputationPoints -= pen.points
		if cleaner.ReputationPoints < 0 {
			cleaner.ReputationPoints = 0
		}
		if cleaner.ReputationPoints == 0 && cleaner.Status != store.CleanerStatusSuspended {
			cleaner.Status = store.CleanerStatusSuspended
			suspended = true
		}
		return tx.Cleaners().Update(ctx, cleaner)
	})
	if err != nil {
		return nil, fromStore(err)
	}

	metrics.PunishmentsAppliedTotal.WithLabelValues(string(input.Type)).Inc()
	e.notify(ctx, input.CleanerID, "Penalty applied",
		fmt.Sprintf("You lost %d reputation points (%s) and are blocked from new calls until %s.",
			pen.points, input.Type, punishment.BlockedUntil.Format("Jan 2, 15:04")),
		notification.TypePunishmentApplied)
	if suspended {
		e.notify(ctx, input.CleanerID, "Account suspended",
			"Your reputation reached zero and your account was suspended. Contact support to appeal.",
			notification.TypePunishmentApplied)
	}
	e.Logger.Printf("Applied punishment %s (%s, -%d pts) to cleaner %s", punishment.ID, input.Type, pen.points, input.CleanerID)
	return punishment, nil
}

// Remove reverses a punishment: restores the deducted points (capped at
// the reputation maximum) and reactivates a suspended cleaner if no other
// in-force punishment remains. Only in-force punishments can be removed.
func (e *PunishmentEngine) Remove(ctx context.Context, punishmentID, removalReason string, removedByID *string) (*store.CleanerPunishment, error) {
	if removalReason == "" {
		return nil, fmt.Errorf("removal reason is required: %w", ErrInvalidArgument)
	}

	punishment, err := e.Store.CleanerPunishments().Get(ctx, punishmentID)
	if err != nil {
		return nil, fromStore(err)
	}
	if !punishment.InForce(time.Now()) {
		return nil, fmt.Errorf("punishment %s is not in force: %w", punishmentID, ErrConflict)
	}

	err = e.atomicallyWithRetry(ctx, func(tx store.Store) error {
		current, err := tx.CleanerPunishments().Get(ctx, punishmentID)
		if err != nil {
			return err
		}
		if !current.InForce(time.Now()) {
			return fmt.Errorf("punishment %s is not in force: %w", punishmentID, ErrConflict)
		}

		current.State = store.PunishmentStateReversed
		current.RemovalReason = removalReason
		current.RemovedByID = removedByID
		if err := tx.CleanerPunishments().Update(ctx, current); err != nil {
			return err
		}

		cleaner, err := tx.Cleaners().Get(ctx, current.CleanerID)
		if err != nil {
			return err
		}
		cleaner.ReputationPoints += current.PointsDeducted
		if cleaner.ReputationPoints > store.ReputationPointsMax {
			cleaner.ReputationPoints = store.ReputationPointsMax
		}
		if cleaner.Status == store.CleanerStatusSuspended {
			remaining, err := tx.CleanerPunishments().ListInForceByCleaner(ctx, cleaner.ID, time.Now())
			if err != nil {
				return err
			}
			if len(remaining) == 0 {
				cleaner.Status = store.CleanerStatusActive
			}
		}
		if err := tx.Cleaners().Update(ctx, cleaner); err != nil {
			return err
		}

		punishment = current
		return nil
	})
	if err != nil {
		return nil, fromStore(err)
	}

	e.notify(ctx, punishment.CleanerID, "Penalty removed",
		fmt.Sprintf("A penalty was reversed and %d reputation points were restored.", punishment.PointsDeducted),
		notification.TypePunishmentRemoved)
	e.Logger.Printf("Removed punishment %s from cleaner %s: %s", punishmentID, punishment.CleanerID, removalReason)
	return punishment, nil
}

// CheckBlocked reports whether a cleaner is currently blocked from
// receiving calls. The most recently issued in-force punishment is
// returned as the reason shown to the cleaner.
func (e *PunishmentEngine) CheckBlocked(ctx context.Context, cleanerID string) (bool, *store.CleanerPunishment, error) {
	inForce, err := e.Store.CleanerPunishments().ListInForceByCleaner(ctx, cleanerID, time.Now())
	if err != nil {
		return false, nil, fromStore(err)
	}
	if len(inForce) == 0 {
		return false, nil, nil
	}
	// ListInForceByCleaner orders newest first.
	return true, inForce[0], nil
}

// SweepExpired flips active punishments whose block has passed to the
// expired state. Expiry keeps the deduction: points return only through
// admin reversal.
func (e *PunishmentEngine) SweepExpired(ctx context.Context) (int64, error) {
	expired, err := e.Store.CleanerPunishments().ExpireDue(ctx, time.Now())
	if err != nil {
		return 0, fromStore(err)
	}
	if expired > 0 {
		metrics.PunishmentsExpiredTotal.Add(float64(expired))
		e.Logger.Printf("Expired %d punishments", expired)
	}
	return expired, nil
}

// History returns a cleaner's punishments, newest first. A limit of zero
// returns all of them.
func (e *PunishmentEngine) History(ctx context.Context, cleanerID string, limit int) ([]*store.CleanerPunishment, error) {
	if _, err := e.Store.Cleaners().Get(ctx, cleanerID); err != nil {
		return nil, fromStore(err)
	}
	punishments, err := e.Store.CleanerPunishments().ListByCleaner(ctx, cleanerID, limit)
	if err != nil {
		return nil, fromStore(err)
	}
	return punishments, nil
}

// ListActive returns all in-force punishments across cleaners ordered by
// soonest expiry first.
func (e *PunishmentEngine) ListActive(ctx context.Context, limit int) ([]*store.CleanerPunishment, error) {
	punishments, err := e.Store.CleanerPunishments().ListInForce(ctx, time.Now(), limit)
	if err != nil {
		return nil, fromStore(err)
	}
	return punishments, nil
}
