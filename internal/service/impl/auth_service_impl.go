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

	"github.com/google/uuid"
)

type AuthServiceImpl struct {
	Store           dataStore
	PasswordService service.PasswordService
	TService        service.TokenService
	Email           service.EmailService
	// Limiter is optional; nil disables login throttling.
	Limiter loginLimiter
	Logger  *slog.Logger
}

func NewAuthServiceImpl(
	st *store.Store,
	passwordService service.PasswordService,
	tokenService service.TokenService,
	email service.EmailService,
	logger *slog.Logger,
) *AuthServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthServiceImpl{
		Store:           gormStoreAdapter{store: st},
		PasswordService: passwordService,
		TService:        tokenService,
		Email:           email,
		Logger:          logger,
	}
}

// WithLimiter enables login throttling. A nil *ratelimit.Limiter leaves it off.
func (a *AuthServiceImpl) WithLimiter(l *ratelimit.Limiter) *AuthServiceImpl {
	if l != nil {
		a.Limiter = l
	}
	return a
}

type dataStore interface {
	Users() userStore
	WithTx(ctx context.Context, fn func(tx storeTx) error) error
}

type storeTx interface {
	Users() userStore
}

type userStore interface {
	Create(ctx context.Context, usr *domain.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByEmailWithPassword(ctx context.Context, email string) (*domain.User, error)
	GetByVerificationCode(ctx context.Context, code string) (*domain.User, error)
	GetByActiveResetToken(ctx context.Context, token string, now time.Time) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	ConsumeVerificationCode(ctx context.Context, id uuid.UUID, code string) (bool, error)
	SetResetToken(ctx context.Context, id uuid.UUID, token string, expiry time.Time) error
	ResetPassword(ctx context.Context, id uuid.UUID, token, passwordHash string) (bool, error)
}

type loginLimiter interface {
	CheckLogin(ctx context.Context, email, ip string) error
	RecordLoginFailure(ctx context.Context, email, ip string) error
	ResetLogin(ctx context.Context, email string) error
}

type gormStoreAdapter struct {
	store *store.Store
}

func (g gormStoreAdapter) Users() userStore { return g.store.Users() }

func (g gormStoreAdapter) WithTx(ctx context.Context, fn func(tx storeTx) error) error {
	if g.store == nil {
		return ErrNilStore
	}
	return g.store.WithTx(ctx, func(tx *store.Store) error {
		return fn(gormTxAdapter{tx: tx})
	})
}

type gormTxAdapter struct {
	tx *store.Store
}

func (g gormTxAdapter) Users() userStore { return g.tx.Users() }

func (a *AuthServiceImpl) Register(ctx context.Context, r dto.RegisterRequest) (*dto.Profile, error) {
	result := "failure"
	defer func() {
		metrics.AuthRegistrationsTotal.WithLabelValues(result).Inc()
	}()

	if r.Password != r.ConfirmPassword {
		return nil, domain.ErrPasswordMismatch
	}
	if err := r.Validate().Err(); err != nil {
		return nil, err
	}

	hash, err := a.PasswordService.Hash(ctx, r.Password)
	if err != nil {
		return nil, err
	}
	code, err := randomToken()
	if err != nil {
		return nil, err
	}

	u := &domain.User{
		Username:         r.Username,
		FirstName:        r.FirstName,
		LastName:         r.LastName,
		Email:            r.Email,
		PasswordHash:     hash,
		Verified:         false,
		VerificationCode: &code,
	}
	if err := a.Store.Users().Create(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			result = "conflict"
			return nil, domain.ErrEmailTaken.Wrap(err)
		}
		return nil, err
	}

	if err := a.Email.SendVerification(ctx, u.Email, u.Username, code); err != nil {
		// Without the email the code is unreachable, so the record goes too.
		// The delete runs detached from ctx, which may be what timed out.
		if delErr := a.Store.Users().Delete(context.WithoutCancel(ctx), u.ID); delErr != nil {
			a.Logger.ErrorContext(ctx, "compensating delete failed",
				append(middleware.LogAttrs(ctx), "user_id", u.ID.String(), "error", delErr)...)
		}
		a.Logger.WarnContext(ctx, "verification email not delivered",
			append(middleware.LogAttrs(ctx), "user_id", u.ID.String(), "error", err)...)
		return nil, domain.ErrVerificationEmail.Wrap(err)
	}

	result = "success"
	profile := dto.ProfileOf(u)
	return &profile, nil
}

func (a *AuthServiceImpl) VerifyEmail(ctx context.Context, code string) (*dto.Profile, error) {
	result := "failure"
	defer func() {
		metrics.AuthVerificationsTotal.WithLabelValues(result).Inc()
	}()

	if code == "" {
		return nil, domain.ErrInvalidVerificationCode
	}

	var out dto.Profile
	err := a.Store.WithTx(ctx, func(tx storeTx) error {
		u, err := tx.Users().GetByVerificationCode(ctx, code)
		if err != nil {
			if errors.Is(err, store.ErrRecordNotFound) {
				return domain.ErrInvalidVerificationCode
			}
			return err
		}
		ok, err := tx.Users().ConsumeVerificationCode(ctx, u.ID, code)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInvalidVerificationCode
		}
		u.Verified = true
		u.VerificationCode = nil
		out = dto.ProfileOf(u)
		return nil
	})
	if err != nil {
		return nil, err
	}

	result = "success"
	return &out, nil
}

func (a *AuthServiceImpl) Login(ctx context.Context, r dto.LoginRequest, ip string) (*dto.LoginResponse, error) {
	result := "failure"
	defer func() {
		metrics.AuthLoginsTotal.WithLabelValues(result).Inc()
	}()

	if err := r.Validate().Err(); err != nil {
		return nil, err
	}

	if a.Limiter != nil {
		if err := a.Limiter.CheckLogin(ctx, r.Email, ip); err != nil {
			if errors.Is(err, ratelimit.ErrRateLimited) {
				result = "rate_limited"
				return nil, domain.ErrRateLimited.Wrap(err)
			}
			a.limiterUnavailable(ctx, err)
		}
	}

	u, err := a.Store.Users().GetByEmailWithPassword(ctx, r.Email)
	if err != nil {
		if !errors.Is(err, store.ErrRecordNotFound) {
			return nil, err
		}
		a.recordFailure(ctx, r.Email, ip)
		return nil, domain.ErrInvalidCredentials
	}

	ok, err := a.PasswordService.Verify(ctx, u.PasswordHash, r.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		a.recordFailure(ctx, r.Email, ip)
		return nil, domain.ErrInvalidCredentials
	}
	if !u.Verified {
		result = "unverified"
		return nil, domain.ErrEmailNotVerified
	}

	if a.Limiter != nil {
		if err := a.Limiter.ResetLogin(ctx, r.Email); err != nil {
			a.limiterUnavailable(ctx, err)
		}
	}

	token, exp, err := a.TService.Issue(u)
	if err != nil {
		return nil, err
	}

	result = "success"
	return &dto.LoginResponse{
		Token:     token,
		ExpiresAt: exp,
		User:      dto.ProfileOf(u),
	}, nil
}

func (a *AuthServiceImpl) recordFailure(ctx context.Context, email, ip string) {
	if a.Limiter == nil {
		return
	}
	if err := a.Limiter.RecordLoginFailure(ctx, email, ip); err != nil {
		a.limiterUnavailable(ctx, err)
	}
}

// Limiter outages fail open.
func (a *AuthServiceImpl) limiterUnavailable(ctx context.Context, err error) {
	a.Logger.WarnContext(ctx, "login limiter unavailable",
		append(middleware.LogAttrs(ctx), "error", err)...)
}
