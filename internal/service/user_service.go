package service

import (
	"context"

	"account-auth/internal/domain"
	"account-auth/internal/dto"
)

type UserService interface {
	Get(ctx context.Context, id domain.UserID) (*dto.Profile, error)
	List(ctx context.Context) ([]dto.Profile, error)
}
