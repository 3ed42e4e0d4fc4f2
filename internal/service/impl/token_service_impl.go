package impl

import (
	"errors"
	"time"

	"account-auth/internal/domain"
	"account-auth/internal/dto"
	"account-auth/internal/observability/metrics"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultSessionTTL is how long a session token stays valid.
const DefaultSessionTTL = 24 * time.Hour

type TokenConfig struct {
	Issuer     string        // e.g. "account-auth"
	Audience   string        // e.g. "clients"
	TTL        time.Duration // defaults to DefaultSessionTTL
	SigningKey []byte        // HS256 secret
}

type SessionClaims struct {
	UserID   string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Verified bool   `json:"verified"`
	jwt.RegisteredClaims
}

// TokenServiceImpl issues and verifies stateless HS256 session tokens. It never
// consults the store; callers that need live account state re-fetch by id.
type TokenServiceImpl struct {
	cfg TokenConfig
	now func() time.Time
}

func NewTokenServiceHS256(cfg TokenConfig) (*TokenServiceImpl, error) {
	if len(cfg.SigningKey) == 0 {
		return nil, domain.ErrMissingSigningKey
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultSessionTTL
	}
	return &TokenServiceImpl{
		cfg: cfg,
		now: func() time.Time { return time.Now().UTC() },
	}, nil
}

func (t *TokenServiceImpl) Issue(user *domain.User) (string, time.Time, error) {
	result := "success"
	defer func() {
		metrics.TokensIssuedTotal.WithLabelValues(result).Inc()
	}()

	now := t.now()
	exp := now.Add(t.cfg.TTL)
	claims := SessionClaims{
		UserID:   user.ID.String(),
		Email:    user.Email,
		Username: user.Username,
		Verified: user.Verified,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.cfg.Issuer,
			Subject:   user.ID.String(),
			Audience:  jwt.ClaimStrings{t.cfg.Audience},
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.cfg.SigningKey)
	if err != nil {
		result = "failure"
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (t *TokenServiceImpl) Verify(tokenStr string) (*dto.SessionClaims, error) {
	claims := &SessionClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.cfg.Issuer),
		jwt.WithAudience(t.cfg.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	tok, err := parser.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return t.cfg.SigningKey, nil
	})
	if err != nil {
		return nil, domain.ErrInvalidSessionToken.Wrap(err)
	}
	if !tok.Valid || claims.UserID == "" || claims.UserID != claims.Subject {
		return nil, domain.ErrInvalidSessionToken.Wrap(errors.New("inconsistent claims"))
	}
	return &dto.SessionClaims{
		ID:        claims.UserID,
		Email:     claims.Email,
		Username:  claims.Username,
		Verified:  claims.Verified,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
