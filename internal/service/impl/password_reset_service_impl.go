package impl

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"account-auth/internal/domain"
	"account-auth/internal/dto"
	"account-auth/internal/observability/metrics"
	"account-auth/internal/observability/middleware"
	"account-auth/internal/ratelimit"
	"account-auth/internal/service"
	"account-auth/internal/store"
)

// DefaultResetTTL is how long a reset token stays usable.
const DefaultResetTTL = 10 * time.Hour

const (
	resetRequestedMessage = "check your email for a reset link"
	resetSavedMessage     = "password reset successful"
)

type resetLimiter interface {
	AllowResetRequest(ctx context.Context, email string) error
}

type PasswordResetServiceImpl struct {
	Store           dataStore
	PasswordService service.PasswordService
	Email           service.EmailService
	// Limiter is optional; nil disables reset request throttling.
	Limiter resetLimiter
	Logger  *slog.Logger
	TTL     time.Duration

	now func() time.Time
}

func NewPasswordResetServiceImpl(
	st *store.Store,
	passwordService service.PasswordService,
	email service.EmailService,
	ttl time.Duration,
	logger *slog.Logger,
) *PasswordResetServiceImpl {
	if ttl <= 0 {
		ttl = DefaultResetTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PasswordResetServiceImpl{
		Store:           gormStoreAdapter{store: st},
		PasswordService: passwordService,
		Email:           email,
		Logger:          logger,
		TTL:             ttl,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// WithLimiter enables per-email request throttling. A nil *ratelimit.Limiter
// leaves it off.
func (p *PasswordResetServiceImpl) WithLimiter(l *ratelimit.Limiter) *PasswordResetServiceImpl {
	if l != nil {
		p.Limiter = l
	}
	return p
}

// Request starts a reset for email. The response is the same whether or not
// the account exists, and failures past lookup are only logged.
func (p *PasswordResetServiceImpl) Request(ctx context.Context, email string) *dto.MessageResponse {
	result := p.request(ctx, email)
	metrics.PasswordResetsTotal.WithLabelValues("request", result).Inc()
	return &dto.MessageResponse{Message: resetRequestedMessage}
}

func (p *PasswordResetServiceImpl) request(ctx context.Context, email string) string {
	if email == "" {
		return "ignored"
	}

	if p.Limiter != nil {
		if err := p.Limiter.AllowResetRequest(ctx, email); err != nil {
			if errors.Is(err, ratelimit.ErrRateLimited) {
				return "rate_limited"
			}
			p.Logger.WarnContext(ctx, "reset limiter unavailable",
				append(middleware.LogAttrs(ctx), "error", err)...)
		}
	}

	u, err := p.Store.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return "ignored"
		}
		p.Logger.ErrorContext(ctx, "reset lookup failed",
			append(middleware.LogAttrs(ctx), "error", err)...)
		return "failure"
	}

	token, err := randomToken()
	if err != nil {
		p.Logger.ErrorContext(ctx, "reset token generation failed",
			append(middleware.LogAttrs(ctx), "error", err)...)
		return "failure"
	}
	if err := p.Store.Users().SetResetToken(ctx, u.ID, token, p.now().Add(p.TTL)); err != nil {
		p.Logger.ErrorContext(ctx, "reset token not stored",
			append(middleware.LogAttrs(ctx), "user_id", u.ID.String(), "error", err)...)
		return "failure"
	}

	if err := p.Email.SendPasswordReset(ctx, u.Email, u.Username, token); err != nil {
		p.Logger.WarnContext(ctx, "reset email not delivered",
			append(middleware.LogAttrs(ctx), "user_id", u.ID.String(), "error", err)...)
		return "email_failure"
	}
	return "success"
}

// Check reports whether token is a live reset token. It changes nothing.
func (p *PasswordResetServiceImpl) Check(ctx context.Context, token string) (bool, error) {
	if token == "" {
		metrics.PasswordResetsTotal.WithLabelValues("check", "invalid").Inc()
		return false, domain.ErrInvalidResetToken
	}
	if _, err := p.Store.Users().GetByActiveResetToken(ctx, token, p.now()); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			metrics.PasswordResetsTotal.WithLabelValues("check", "invalid").Inc()
			return false, domain.ErrInvalidResetToken
		}
		return false, err
	}
	metrics.PasswordResetsTotal.WithLabelValues("check", "success").Inc()
	return true, nil
}

func (p *PasswordResetServiceImpl) Save(ctx context.Context, r dto.ResetPasswordSaveRequest) (*dto.MessageResponse, error) {
	result := "failure"
	defer func() {
		metrics.PasswordResetsTotal.WithLabelValues("save", result).Inc()
	}()

	if r.Password != r.ConfirmPassword {
		return nil, domain.ErrPasswordMismatch
	}
	if err := r.Validate().Err(); err != nil {
		return nil, err
	}

	u, err := p.Store.Users().GetByActiveResetToken(ctx, r.ResetPasswordToken, p.now())
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			result = "invalid"
			return nil, domain.ErrInvalidResetRequest
		}
		return nil, err
	}

	hash, err := p.PasswordService.Hash(ctx, r.Password)
	if err != nil {
		return nil, err
	}

	ok, err := p.Store.Users().ResetPassword(ctx, u.ID, r.ResetPasswordToken, hash)
	if err != nil {
		return nil, err
	}
	if !ok {
		result = "invalid"
		return nil, domain.ErrInvalidResetRequest
	}

	result = "success"
	return &dto.MessageResponse{Message: resetSavedMessage}, nil
}
