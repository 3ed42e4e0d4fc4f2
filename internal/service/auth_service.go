package service

import (
	"context"

	"account-auth/internal/dto"
)

type AuthService interface {
	Register(ctx context.Context, r dto.RegisterRequest) (*dto.Profile, error)
	VerifyEmail(ctx context.Context, code string) (*dto.Profile, error)
	Login(ctx context.Context, r dto.LoginRequest, ip string) (*dto.LoginResponse, error)
}
