package postgresql

import (
	"context"
	"fmt"
	"time"

	"cleanscore-api/res/store"
)

type bookingStore struct {
	*storeImpl
}

func NewBookingStore(rootStore *storeImpl) *bookingStore {
	return &bookingStore{storeImpl: rootStore}
}

func (bs *bookingStore) Create(ctx context.Context, booking *store.Booking) error {
	result := bs.db.WithContext(ctx).Create(booking)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("failed to create booking")
	}
	return nil
}

func (bs *bookingStore) Get(ctx context.Context, id string) (*store.Booking, error) {
	var booking store.Booking
	result := bs.db.WithContext(ctx).Where("id = ?", id).First(&booking)
	if result.Error != nil {
		return nil, translateError(result.Error)
	}
	return &booking, nil
}

func (bs *bookingStore) Update(ctx context.Context, booking *store.Booking) error {
	result := bs.db.WithContext(ctx).Save(booking)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("booking not found (id: %s)", booking.ID)
	}
	return nil
}

func (bs *bookingStore) GetByCleanerCreatedBetween(ctx context.Context, cleanerID string, start, end time.Time) ([]*store.Booking, error) {
	var bookings []*store.Booking
	err := bs.db.WithContext(ctx).
		Where("cleaner_id = ? AND created_at >= ? AND created_at <= ?", cleanerID, start, end).
		Order("created_at ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, translateError(err)
	}
	return bookings, nil
}

func (bs *bookingStore) CountCompletedByCleaner(ctx context.Context, cleanerID string) (int, error) {
	var count int64
	err := bs.db.WithContext(ctx).Model(&store.Booking{}).
		Where("cleaner_id = ? AND status = ?", cleanerID, store.BookingStatusCompleted).
		Count(&count).Error
	if err != nil {
		return 0, translateError(err)
	}
	return int(count), nil
}

func (bs *bookingStore) CountCompletedByCustomer(ctx context.Context, customerID string) (int, error) {
	var count int64
	err := bs.db.WithContext(ctx).Model(&store.Booking{}).
		Where("customer_id = ? AND status = ?", customerID, store.BookingStatusCompleted).
		Count(&count).Error
	if err != nil {
		return 0, translateError(err)
	}
	return int(count), nil
}

func (bs *bookingStore) UpdateStatus(ctx context.Context, bookingID string, status store.BookingStatus) error {
	result := bs.db.WithContext(ctx).Model(&store.Booking{}).
		Where("id = ?", bookingID).
		Update("status", status)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("booking not found (id: %s)", bookingID)
	}
	return nil
}
