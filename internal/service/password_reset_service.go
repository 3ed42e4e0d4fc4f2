package service

import (
	"context"

	"account-auth/internal/dto"
)

type PasswordResetService interface {
	Request(ctx context.Context, email string) *dto.MessageResponse
	Check(ctx context.Context, token string) (bool, error)
	Save(ctx context.Context, r dto.ResetPasswordSaveRequest) (*dto.MessageResponse, error)
}
