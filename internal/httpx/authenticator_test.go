package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"account-auth/internal/domain"
	"account-auth/internal/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTokens struct {
	claims map[string]*dto.SessionClaims
}

func (s stubTokens) Issue(*domain.User) (string, time.Time, error) {
	return "", time.Time{}, errors.New("not used")
}

func (s stubTokens) Verify(token string) (*dto.SessionClaims, error) {
	if c, ok := s.claims[token]; ok {
		return c, nil
	}
	return nil, domain.ErrInvalidSessionToken
}

type stubUsers struct {
	profiles map[uuid.UUID]dto.Profile
}

func (s stubUsers) Get(_ context.Context, id domain.UserID) (*dto.Profile, error) {
	p, ok := s.profiles[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &p, nil
}

func (s stubUsers) List(context.Context) ([]dto.Profile, error) { return nil, nil }

func TestAuthenticatorMiddleware(t *testing.T) {
	id := uuid.New()
	gone := uuid.New()
	auth := NewAuthenticator(
		stubTokens{claims: map[string]*dto.SessionClaims{
			"good":   {ID: id.String(), Verified: false},
			"gone":   {ID: gone.String()},
			"bad-id": {ID: "not-a-uuid"},
		}},
		stubUsers{profiles: map[uuid.UUID]dto.Profile{
			id: {ID: id.String(), Username: "johndoe", Email: "a@x.com", Verified: true},
		}},
	)

	var seen *dto.Profile
	h := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ProfileFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"jwt scheme", "JWT good", http.StatusNoContent},
		{"bearer scheme", "Bearer good", http.StatusNoContent},
		{"missing", "", http.StatusUnauthorized},
		{"unknown scheme", "Basic good", http.StatusUnauthorized},
		{"invalid token", "JWT forged", http.StatusUnauthorized},
		{"deleted account", "JWT gone", http.StatusUnauthorized},
		{"malformed id", "JWT bad-id", http.StatusUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, tc.status, rec.Code)
			if tc.status != http.StatusNoContent {
				assert.Nil(t, seen)
				var body ErrorBody
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, "auth", body.Error)
				return
			}
			require.NotNil(t, seen)
			assert.True(t, seen.Verified, "profile comes from the store, not the token")
		})
	}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrPasswordMismatch, http.StatusBadRequest},
		{domain.ErrEmailTaken, http.StatusConflict},
		{domain.ErrInvalidVerificationCode, http.StatusNotFound},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrRateLimited, http.StatusTooManyRequests},
		{domain.ErrVerificationEmail.Wrap(errors.New("timeout")), http.StatusBadGateway},
		{domain.ErrMalformedHash, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, StatusOf(tc.err), tc.err.Error())
	}
}

func TestWriteErrorHidesCause(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	WriteError(rec, req, errors.New("pq: connection refused"))

	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, ErrorBody{Error: "fatal", Message: "internal error"}, body)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}
