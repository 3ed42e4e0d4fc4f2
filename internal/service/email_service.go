package service

import "context"

type EmailService interface {
	SendVerification(ctx context.Context, to, username, code string) error
	SendPasswordReset(ctx context.Context, to, username, token string) error
}
