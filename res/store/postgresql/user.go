package postgresql

import (
	"context"
	"fmt"

	"cleanscore-api/res/store"
)

type userStore struct {
	*storeImpl
}

func NewUserStore(rootStore *storeImpl) *userStore {
	return &userStore{storeImpl: rootStore}
}

func (us *userStore) Get(ctx context.Context, id string) (*store.User, error) {
	var user store.User
	result := us.db.WithContext(ctx).Where("id = ?", id).First(&user)
	if result.Error != nil {
		return nil, translateError(result.Error)
	}
	return &user, nil
}

func (us *userStore) GetByEmail(ctx context.Context, email string) (*store.User, error) {
	var user store.User
	result := us.db.WithContext(ctx).Where("email = ?", email).First(&user)
	if result.Error != nil {
		return nil, translateError(result.Error)
	}
	return &user, nil
}

func (us *userStore) Create(ctx context.Context, user *store.User) error {
	result := us.db.WithContext(ctx).Create(user)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("failed to create user")
	}
	return nil
}

func (us *userStore) Update(ctx context.Context, user *store.User) error {
	result := us.db.WithContext(ctx).Save(user)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("user not found (id: %s)", user.ID)
	}
	return nil
}

func (us *userStore) Delete(ctx context.Context, id string) error {
	result := us.db.WithContext(ctx).Delete(&store.User{ID: id})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("user not found (id: %s)", id)
	}
	return nil
}
