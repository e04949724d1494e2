package postgresql

import (
	"context"
	"fmt"
	"time"

	"cleanscore-api/res/store"
)

type bonusStore struct {
	*storeImpl
}

func NewBonusStore(rootStore *storeImpl) *bonusStore {
	return &bonusStore{storeImpl: rootStore}
}

func (bs *bonusStore) Create(ctx context.Context, bonus *store.CleanerBonus) error {
	result := bs.db.WithContext(ctx).Create(bonus)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("failed to create bonus")
	}
	return nil
}

func (bs *bonusStore) Get(ctx context.Context, id string) (*store.CleanerBonus, error) {
	var bonus store.CleanerBonus
	result := bs.db.WithContext(ctx).Where("id = ?", id).First(&bonus)
	if result.Error != nil {
		return nil, translateError(result.Error)
	}
	return &bonus, nil
}

// MarkTransferred flips pending -> transferred. The status guard lives in
// the WHERE clause so a concurrent or repeated transfer affects zero rows.
func (bs *bonusStore) MarkTransferred(ctx context.Context, bonusID string, transferredAt time.Time) (bool, error) {
	result := bs.db.WithContext(ctx).Model(&store.CleanerBonus{}).
		Where("id = ? AND status = ?", bonusID, store.BonusStatusPending).
		Updates(map[string]interface{}{
			"status":         store.BonusStatusTransferred,
			"transferred_at": transferredAt,
		})
	if result.Error != nil {
		return false, translateError(result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (bs *bonusStore) RevertTransfer(ctx context.Context, bonusID string) error {
	result := bs.db.WithContext(ctx).Model(&store.CleanerBonus{}).
		Where("id = ? AND status = ?", bonusID, store.BonusStatusTransferred).
		Updates(map[string]interface{}{
			"status":         store.BonusStatusPending,
			"transferred_at": nil,
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	return nil
}

func (bs *bonusStore) ListByCleaner(ctx context.Context, cleanerID string, limit int) ([]*store.CleanerBonus, error) {
	query := bs.db.WithContext(ctx).
		Where("cleaner_id = ?", cleanerID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var bonuses []*store.CleanerBonus
	if err := query.Find(&bonuses).Error; err != nil {
		return nil, translateError(err)
	}
	return bonuses, nil
}

func (bs *bonusStore) SumTransferred(ctx context.Context, cleanerID string) (int64, error) {
	var result struct {
		Total int64
	}

	err := bs.db.WithContext(ctx).
		Model(&store.CleanerBonus{}).
		Select("COALESCE(SUM(amount_cents), 0) as total").
		Where("cleaner_id = ? AND status = ?", cleanerID, store.BonusStatusTransferred).
		Scan(&result).Error
	if err != nil {
		return 0, translateError(err)
	}

	return result.Total, nil
}
