package postgresql

import (
	"context"
	"fmt"
	"strings"

	"cleanscore-api/res/store"

	"gorm.io/gorm"
)

type cleanerStore struct {
	*storeImpl
}

func NewCleanerStore(rootStore *storeImpl) *cleanerStore {
	return &cleanerStore{storeImpl: rootStore}
}

// MUTATIONS

func (cs *cleanerStore) Create(ctx context.Context, cleaner *store.Cleaner) error {
	if cleaner.ReputationPoints < 0 || cleaner.ReputationPoints > store.ReputationPointsMax {
		return fmt.Errorf("%w: reputation points %d outside [0,%d]",
			store.ErrInvalidInput, cleaner.ReputationPoints, store.ReputationPointsMax)
	}

	result := cs.db.WithContext(ctx).Create(cleaner)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("failed to create cleaner")
	}
	return nil
}

// Update writes the full row back guarded by the version it was read with.
// The stored version is bumped on success so a concurrent writer loses.
func (cs *cleanerStore) Update(ctx context.Context, cleaner *store.Cleaner) error {
	if cleaner.ReputationPoints < 0 || cleaner.ReputationPoints > store.ReputationPointsMax {
		return fmt.Errorf("%w: reputation points %d outside [0,%d]",
			store.ErrInvalidInput, cleaner.ReputationPoints, store.ReputationPointsMax)
	}

	readVersion := cleaner.Version
	cleaner.Version = readVersion + 1

	result := cs.db.WithContext(ctx).Model(&store.Cleaner{}).
		Where("id = ? AND version = ?", cleaner.ID, readVersion).
		Select("*").Omit("id", "created_at").
		Updates(cleaner)
	if result.Error != nil {
		cleaner.Version = readVersion
		return translateError(result.Error)
	}
	if result.RowsAffected != 1 {
		cleaner.Version = readVersion
		return store.ErrVersionConflict
	}
	return nil
}

// QUERIES

func (cs *cleanerStore) Get(ctx context.Context, id string) (*store.Cleaner, error) {
	var cleaner store.Cleaner
	result := cs.db.WithContext(ctx).Where("id = ?", id).First(&cleaner)
	if result.Error != nil {
		return nil, translateError(result.Error)
	}
	return &cleaner, nil
}

func (cs *cleanerStore) GetByUserID(ctx context.Context, userID string) (*store.Cleaner, error) {
	var cleaner store.Cleaner
	result := cs.db.WithContext(ctx).Where("user_id = ?", userID).First(&cleaner)
	if result.Error != nil {
		return nil, translateError(result.Error)
	}
	return &cleaner, nil
}

func (cs *cleanerStore) List(ctx context.Context, filters store.CleanerFilters) ([]*store.Cleaner, error) {
	query := cs.applyFilters(cs.db.WithContext(ctx).Model(&store.Cleaner{}), filters)

	if filters.OrderBy != "" {
		query = query.Order(filters.OrderBy)
	} else {
		query = query.Order("created_at DESC")
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var cleaners []*store.Cleaner
	if err := query.Find(&cleaners).Error; err != nil {
		return nil, translateError(err)
	}
	return cleaners, nil
}

func (cs *cleanerStore) Count(ctx context.Context, filters store.CleanerFilters) (int, error) {
	query := cs.applyFilters(cs.db.WithContext(ctx).Model(&store.Cleaner{}), filters)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, translateError(err)
	}
	return int(count), nil
}

func (cs *cleanerStore) CountWithHigherAgility(ctx context.Context, score float64, statuses []store.CleanerStatus) (int, error) {
	query := cs.db.WithContext(ctx).Model(&store.Cleaner{}).
		Where("agility_score > ?", score)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, translateError(err)
	}
	return int(count), nil
}

// Helper method to apply filters
func (cs *cleanerStore) applyFilters(query *gorm.DB, filters store.CleanerFilters) *gorm.DB {
	if len(filters.Statuses) > 0 {
		query = query.Where("status IN ?", filters.Statuses)
	}
	if filters.Region != nil {
		query = query.Where("LOWER(region) LIKE ?", "%"+strings.ToLower(*filters.Region)+"%")
	}
	return query
}
