package impl

import (
	"context"
	"errors"

	"account-auth/internal/domain"
	"account-auth/internal/dto"
	"account-auth/internal/store"
)

type UserServiceImpl struct {
	Store dataStore
}

func NewUserServiceImpl(st *store.Store) *UserServiceImpl {
	return &UserServiceImpl{Store: gormStoreAdapter{store: st}}
}

func (s *UserServiceImpl) Get(ctx context.Context, id domain.UserID) (*dto.Profile, error) {
	u, err := s.Store.Users().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	profile := dto.ProfileOf(u)
	return &profile, nil
}

func (s *UserServiceImpl) List(ctx context.Context) ([]dto.Profile, error) {
	users, err := s.Store.Users().List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.Profile, 0, len(users))
	for i := range users {
		out = append(out, dto.ProfileOf(&users[i]))
	}
	return out, nil
}
