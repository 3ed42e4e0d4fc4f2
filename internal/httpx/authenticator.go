// Package httpx holds the HTTP plumbing shared by every route: session
// authentication, error rendering and request logging.
package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"account-auth/internal/domain"
	"account-auth/internal/dto"
	"account-auth/internal/observability/metrics"
	"account-auth/internal/observability/middleware"
	"account-auth/internal/service"

	"github.com/google/uuid"
)

type ctxKey int

const profileKey ctxKey = iota

var errMissingToken = domain.NewError(domain.KindAuth, "missing session token")

// Authenticator guards routes with a session token taken from the
// Authorization header, as "JWT <token>" or "Bearer <token>".
type Authenticator struct {
	tokens service.TokenService
	users  service.UserService
}

func NewAuthenticator(tokens service.TokenService, users service.UserService) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

// Authenticate resolves the request's token to the account's current profile.
// The token only vouches for the id; everything else is re-read.
func (a *Authenticator) Authenticate(ctx context.Context, header string) (*dto.Profile, error) {
	_, raw, ok := parseAuthorization(header)
	if !ok {
		return nil, errMissingToken
	}
	claims, err := a.tokens.Verify(raw)
	if err != nil {
		return nil, err
	}
	id, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, domain.ErrInvalidSessionToken.Wrap(err)
	}
	profile, err := a.users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidSessionToken.Wrap(err)
		}
		return nil, err
	}
	return profile, nil
}

func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		scheme, _, _ := parseAuthorization(header)
		if scheme == "" {
			scheme = "none"
		}

		profile, err := a.Authenticate(r.Context(), header)
		if err != nil {
			metrics.AuthenticationAttemptsTotal.WithLabelValues(scheme, "failure").Inc()
			slog.WarnContext(r.Context(), "authentication failed",
				append(middleware.LogAttrs(r.Context()), "scheme", scheme, "error", err)...)
			WriteError(w, r, err)
			return
		}
		metrics.AuthenticationAttemptsTotal.WithLabelValues(scheme, "success").Inc()
		next.ServeHTTP(w, r.WithContext(WithProfile(r.Context(), profile)))
	})
}

func WithProfile(ctx context.Context, p *dto.Profile) context.Context {
	return context.WithValue(ctx, profileKey, p)
}

// ProfileFromContext returns the profile Middleware attached, if any.
func ProfileFromContext(ctx context.Context) (*dto.Profile, bool) {
	p, ok := ctx.Value(profileKey).(*dto.Profile)
	return p, ok && p != nil
}

func parseAuthorization(header string) (scheme, token string, ok bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found {
		return "", "", false
	}
	scheme = strings.ToLower(scheme)
	token = strings.TrimSpace(token)
	if (scheme != "jwt" && scheme != "bearer") || token == "" {
		return "", "", false
	}
	return scheme, token, true
}
