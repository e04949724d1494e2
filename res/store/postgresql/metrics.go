package postgresql

import (
	"context"
	"fmt"

	"cleanscore-api/res/store"

	"gorm.io/gorm/clause"
)

type metricsStore struct {
	*storeImpl
}

func NewMetricsStore(rootStore *storeImpl) *metricsStore {
	return &metricsStore{storeImpl: rootStore}
}

func (ms *metricsStore) Get(ctx context.Context, cleanerID string, year, month int) (*store.CleanerMetrics, error) {
	var metrics store.CleanerMetrics
	result := ms.db.WithContext(ctx).
		Where("cleaner_id = ? AND year = ? AND month = ?", cleanerID, year, month).
		First(&metrics)
	if result.Error != nil {
		return nil, translateError(result.Error)
	}
	return &metrics, nil
}

// Upsert overwrites the snapshot for the (cleaner, year, month) key.
func (ms *metricsStore) Upsert(ctx context.Context, metrics *store.CleanerMetrics) error {
	result := ms.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cleaner_id"}, {Name: "year"}, {Name: "month"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_calls", "accepted_calls", "rejected_calls",
			"completed_jobs", "cancelled_jobs", "no_show_jobs",
			"acceptance_rate", "completion_rate", "avg_response_time",
			"avg_rating", "total_reviews_received", "five_star_reviews",
			"agility_score", "ranking", "top_percentile", "updated_at",
		}),
	}).Create(metrics)
	if result.Error != nil {
		return translateError(result.Error)
	}
	return nil
}

func (ms *metricsStore) Update(ctx context.Context, metrics *store.CleanerMetrics) error {
	result := ms.db.WithContext(ctx).Omit(clause.Associations).Save(metrics)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("metrics snapshot not found (id: %s)", metrics.ID)
	}
	return nil
}

func (ms *metricsStore) ListForPeriod(ctx context.Context, year, month int) ([]*store.CleanerMetrics, error) {
	var metrics []*store.CleanerMetrics
	err := ms.db.WithContext(ctx).
		Preload("Cleaner").
		Where("year = ? AND month = ?", year, month).
		Order("agility_score DESC").
		Find(&metrics).Error
	if err != nil {
		return nil, translateError(err)
	}
	return metrics, nil
}

func (ms *metricsStore) History(ctx context.Context, cleanerID string, limit int) ([]*store.CleanerMetrics, error) {
	query := ms.db.WithContext(ctx).
		Where("cleaner_id = ?", cleanerID).
		Order("year DESC, month DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var metrics []*store.CleanerMetrics
	if err := query.Find(&metrics).Error; err != nil {
		return nil, translateError(err)
	}
	return metrics, nil
}

func (ms *metricsStore) TopPercentile(ctx context.Context, year, month, limit int) ([]*store.CleanerMetrics, error) {
	query := ms.db.WithContext(ctx).
		Where("year = ? AND month = ? AND top_percentile = ?", year, month, true).
		Order("agility_score DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var metrics []*store.CleanerMetrics
	if err := query.Find(&metrics).Error; err != nil {
		return nil, translateError(err)
	}
	return metrics, nil
}
