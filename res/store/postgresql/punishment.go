package postgresql

import (
	"context"
	"fmt"
	"time"

	"cleanscore-api/res/store"
)

type punishmentStore struct {
	*storeImpl
}

func NewPunishmentStore(rootStore *storeImpl) *punishmentStore {
	return &punishmentStore{storeImpl: rootStore}
}

func (ps *punishmentStore) Create(ctx context.Context, punishment *store.CleanerPunishment) error {
	result := ps.db.WithContext(ctx).Create(punishment)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("failed to create punishment")
	}
	return nil
}

func (ps *punishmentStore) Get(ctx context.Context, id string) (*store.CleanerPunishment, error) {
	var punishment store.CleanerPunishment
	result := ps.db.WithContext(ctx).Where("id = ?", id).First(&punishment)
	if result.Error != nil {
		return nil, translateError(result.Error)
	}
	return &punishment, nil
}

func (ps *punishmentStore) Update(ctx context.Context, punishment *store.CleanerPunishment) error {
	result := ps.db.WithContext(ctx).Save(punishment)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("punishment not found (id: %s)", punishment.ID)
	}
	return nil
}

func (ps *punishmentStore) ListByCleaner(ctx context.Context, cleanerID string, limit int) ([]*store.CleanerPunishment, error) {
	query := ps.db.WithContext(ctx).
		Where("cleaner_id = ?", cleanerID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var punishments []*store.CleanerPunishment
	if err := query.Find(&punishments).Error; err != nil {
		return nil, translateError(err)
	}
	return punishments, nil
}

func (ps *punishmentStore) ListInForceByCleaner(ctx context.Context, cleanerID string, now time.Time) ([]*store.CleanerPunishment, error) {
	var punishments []*store.CleanerPunishment
	err := ps.db.WithContext(ctx).
		Where("cleaner_id = ? AND state = ? AND blocked_until > ?",
			cleanerID, store.PunishmentStateActive, now).
		Order("created_at DESC").
		Find(&punishments).Error
	if err != nil {
		return nil, translateError(err)
	}
	return punishments, nil
}

func (ps *punishmentStore) ListInForce(ctx context.Context, now time.Time, limit int) ([]*store.CleanerPunishment, error) {
	query := ps.db.WithContext(ctx).
		Where("state = ? AND blocked_until > ?", store.PunishmentStateActive, now).
		Order("blocked_until ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var punishments []*store.CleanerPunishment
	if err := query.Find(&punishments).Error; err != nil {
		return nil, translateError(err)
	}
	return punishments, nil
}

// ExpireDue is the passive-expiry sweep. Points stay deducted: expiry is
// not a reversal.
func (ps *punishmentStore) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	result := ps.db.WithContext(ctx).Model(&store.CleanerPunishment{}).
		Where("state = ? AND blocked_until <= ?", store.PunishmentStateActive, now).
		Update("state", store.PunishmentStateExpired)
	if result.Error != nil {
		return 0, translateError(result.Error)
	}
	return result.RowsAffected, nil
}
