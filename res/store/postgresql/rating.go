package postgresql

import (
	"context"
	"fmt"
	"time"

	"cleanscore-api/res/store"
)

type ratingStore struct {
	*storeImpl
}

func NewRatingStore(rootStore *storeImpl) *ratingStore {
	return &ratingStore{storeImpl: rootStore}
}

func (rs *ratingStore) Create(ctx context.Context, rating *store.Rating) error {
	result := rs.db.WithContext(ctx).Create(rating)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("failed to create rating")
	}
	return nil
}

func (rs *ratingStore) Get(ctx context.Context, id string) (*store.Rating, error) {
	var rating store.Rating
	result := rs.db.WithContext(ctx).Where("id = ?", id).First(&rating)
	if result.Error != nil {
		return nil, translateError(result.Error)
	}
	return &rating, nil
}

func (rs *ratingStore) GetByBooking(ctx context.Context, bookingID string, direction store.RatingDirection) (*store.Rating, error) {
	var rating store.Rating
	result := rs.db.WithContext(ctx).
		Where("booking_id = ? AND direction = ?", bookingID, direction).
		First(&rating)
	if result.Error != nil {
		return nil, translateError(result.Error)
	}
	return &rating, nil
}

func (rs *ratingStore) Update(ctx context.Context, rating *store.Rating) error {
	result := rs.db.WithContext(ctx).Save(rating)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("rating not found (id: %s)", rating.ID)
	}
	return nil
}

func (rs *ratingStore) LatestForCleaner(ctx context.Context, cleanerID string, limit int) ([]*store.Rating, error) {
	query := rs.db.WithContext(ctx).
		Where("cleaner_id = ? AND direction = ?", cleanerID, store.RatingUserToCleaner).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var ratings []*store.Rating
	if err := query.Find(&ratings).Error; err != nil {
		return nil, translateError(err)
	}
	return ratings, nil
}

func (rs *ratingStore) ForCleanerCreatedBetween(ctx context.Context, cleanerID string, start, end time.Time) ([]*store.Rating, error) {
	var ratings []*store.Rating
	err := rs.db.WithContext(ctx).
		Where("cleaner_id = ? AND direction = ? AND created_at >= ? AND created_at <= ?",
			cleanerID, store.RatingUserToCleaner, start, end).
		Order("created_at ASC").
		Find(&ratings).Error
	if err != nil {
		return nil, translateError(err)
	}
	return ratings, nil
}

func (rs *ratingStore) AverageForCleaner(ctx context.Context, cleanerID string) (float64, int, error) {
	var result struct {
		AverageRating float64
		Count         int
	}

	err := rs.db.WithContext(ctx).
		Model(&store.Rating{}).
		Select("COALESCE(AVG(rating), 0) as average_rating, COUNT(*) as count").
		Where("cleaner_id = ? AND direction = ?", cleanerID, store.RatingUserToCleaner).
		Scan(&result).Error
	if err != nil {
		return 0, 0, translateError(err)
	}

	return result.AverageRating, result.Count, nil
}
