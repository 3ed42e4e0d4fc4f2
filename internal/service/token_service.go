package service

import (
	"time"

	"account-auth/internal/domain"
	"account-auth/internal/dto"
)

type TokenService interface {
	Issue(user *domain.User) (token string, expiresAt time.Time, err error)
	Verify(token string) (*dto.SessionClaims, error)
}
