package postgresql

import (
	"context"
	"fmt"

	"cleanscore-api/res/store"
)

type achievementStore struct {
	*storeImpl
}

func NewAchievementStore(rootStore *storeImpl) *achievementStore {
	return &achievementStore{storeImpl: rootStore}
}

func (as *achievementStore) Create(ctx context.Context, achievement *store.Achievement) error {
	result := as.db.WithContext(ctx).Create(achievement)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("failed to create achievement")
	}
	return nil
}

func (as *achievementStore) Get(ctx context.Context, id string) (*store.Achievement, error) {
	var achievement store.Achievement
	result := as.db.WithContext(ctx).Where("id = ?", id).First(&achievement)
	if result.Error != nil {
		return nil, translateError(result.Error)
	}
	return &achievement, nil
}

func (as *achievementStore) GetByActorAndType(ctx context.Context, actorType store.AchievementActor, actorID, achievementType string) (*store.Achievement, error) {
	var achievement store.Achievement
	result := as.db.WithContext(ctx).
		Where("actor_type = ? AND actor_id = ? AND type = ?", actorType, actorID, achievementType).
		First(&achievement)
	if result.Error != nil {
		return nil, translateError(result.Error)
	}
	return &achievement, nil
}

func (as *achievementStore) Update(ctx context.Context, achievement *store.Achievement) error {
	result := as.db.WithContext(ctx).Save(achievement)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("achievement not found (id: %s)", achievement.ID)
	}
	return nil
}

func (as *achievementStore) ListByActor(ctx context.Context, actorType store.AchievementActor, actorID string) ([]*store.Achievement, error) {
	var achievements []*store.Achievement
	err := as.db.WithContext(ctx).
		Where("actor_type = ? AND actor_id = ?", actorType, actorID).
		Order("unlocked_at DESC, type ASC").
		Find(&achievements).Error
	if err != nil {
		return nil, translateError(err)
	}
	return achievements, nil
}

func (as *achievementStore) TopByLevel(ctx context.Context, actorType store.AchievementActor, actorID string, limit int) ([]*store.Achievement, error) {
	query := as.db.WithContext(ctx).
		Where("actor_type = ? AND actor_id = ?", actorType, actorID).
		Order("level DESC, unlocked_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var achievements []*store.Achievement
	if err := query.Find(&achievements).Error; err != nil {
		return nil, translateError(err)
	}
	return achievements, nil
}
