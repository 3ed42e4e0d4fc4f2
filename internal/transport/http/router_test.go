package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"account-auth/internal/dto"
	"account-auth/internal/httpx"
	"account-auth/internal/service/impl"
	"account-auth/internal/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureMailer struct {
	mu     sync.Mutex
	codes  []string
	resets []string
}

func (m *captureMailer) SendVerification(_ context.Context, _, _, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes = append(m.codes, code)
	return nil
}

func (m *captureMailer) SendPasswordReset(_ context.Context, _, _, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets = append(m.resets, token)
	return nil
}

func (m *captureMailer) lastCode() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[len(m.codes)-1]
}

func (m *captureMailer) lastReset() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resets[len(m.resets)-1]
}

func newTestServer(t *testing.T) (*httptest.Server, *captureMailer) {
	t.Helper()

	st := storetest.New(t)
	mailer := &captureMailer{}
	passwords := impl.NewPasswordServiceArgon2id(impl.Argon2Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32, SaltLen: 16}, 2)
	tokens, err := impl.NewTokenServiceHS256(impl.TokenConfig{
		Issuer: "account-auth", Audience: "clients", SigningKey: []byte("router-test-key"),
	})
	require.NoError(t, err)
	users := impl.NewUserServiceImpl(st)

	router := NewRouter(RouterConfig{}, Services{
		Auth:  impl.NewAuthServiceImpl(st, passwords, tokens, mailer, nil),
		Reset: impl.NewPasswordResetServiceImpl(st, passwords, mailer, time.Hour, nil),
		Users: users,
	}, httpx.NewAuthenticator(tokens, users))

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, mailer
}

func call(t *testing.T, srv *httptest.Server, method, path, auth string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

var johnDoe = dto.RegisterRequest{
	Username:        "johndoe",
	Password:        "secret123",
	ConfirmPassword: "secret123",
	Email:           "john@x.com",
}

func TestAccountFlowOverHTTP(t *testing.T) {
	srv, mailer := newTestServer(t)

	resp := call(t, srv, http.MethodPost, "/users/register", "", johnDoe)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	reg := decodeBody[dto.RegisterResponse](t, resp)
	assert.True(t, reg.Success)
	assert.Equal(t, "Account created, please verify your email", reg.Message)
	assert.False(t, reg.User.Verified)

	resp = call(t, srv, http.MethodPost, "/users/login", "", dto.LoginRequest{Email: johnDoe.Email, Password: johnDoe.Password})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "email not verified", decodeBody[httpx.ErrorBody](t, resp).Message)

	resp = call(t, srv, http.MethodGet, "/users/verify-account/"+mailer.lastCode(), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decodeBody[dto.Profile](t, resp).Verified)

	resp = call(t, srv, http.MethodGet, "/users/verify-account/"+mailer.lastCode(), "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = call(t, srv, http.MethodPost, "/users/login", "", dto.LoginRequest{Email: johnDoe.Email, Password: johnDoe.Password})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	header := resp.Header.Get("Authorization")
	login := decodeBody[dto.LoginResponse](t, resp)
	assert.Equal(t, "JWT "+login.Token, header)

	resp = call(t, srv, http.MethodGet, "/users/me", header, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := decodeBody[dto.Profile](t, resp)
	assert.Equal(t, reg.User.ID, me.ID)
	assert.True(t, me.Verified)

	resp = call(t, srv, http.MethodGet, "/users/"+me.ID, "Bearer "+login.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = call(t, srv, http.MethodGet, "/users", header, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeBody[[]dto.Profile](t, resp), 1)

	resp = call(t, srv, http.MethodPost, "/users/reset-password", "", dto.ResetPasswordRequest{Email: johnDoe.Email})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "check your email for a reset link", decodeBody[dto.MessageResponse](t, resp).Message)
	token := mailer.lastReset()

	resp = call(t, srv, http.MethodGet, "/users/reset-password/"+token, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decodeBody[bool](t, resp))

	resp = call(t, srv, http.MethodPut, "/users/reset-password", "", dto.ResetPasswordSaveRequest{
		Password: "changed1", ConfirmPassword: "changed1", ResetPasswordToken: token,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "password reset successful", decodeBody[dto.MessageResponse](t, resp).Message)

	resp = call(t, srv, http.MethodGet, "/users/reset-password/"+token, "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = call(t, srv, http.MethodPost, "/users/login", "", dto.LoginRequest{Email: johnDoe.Email, Password: "changed1"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestErrorResponses(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := call(t, srv, http.MethodPost, "/users/register", "", johnDoe)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	mismatch := johnDoe
	mismatch.Email = "other@x.com"
	mismatch.ConfirmPassword = "different"

	tests := []struct {
		name   string
		method string
		path   string
		auth   string
		body   any
		status int
		kind   string
	}{
		{"duplicate email", http.MethodPost, "/users/register", "", johnDoe, http.StatusConflict, "conflict"},
		{"password mismatch", http.MethodPost, "/users/register", "", mismatch, http.StatusBadRequest, "validation"},
		{"unknown code", http.MethodGet, "/users/verify-account/nope", "", nil, http.StatusNotFound, "not_found"},
		{"bad login", http.MethodPost, "/users/login", "", dto.LoginRequest{Email: "ghost@x.com", Password: "x"}, http.StatusUnauthorized, "auth"},
		{"bad reset token", http.MethodGet, "/users/reset-password/nope", "", nil, http.StatusBadRequest, "validation"},
		{"bad reset save", http.MethodPut, "/users/reset-password", "", dto.ResetPasswordSaveRequest{
			Password: "changed1", ConfirmPassword: "changed1", ResetPasswordToken: "nope",
		}, http.StatusBadRequest, "validation"},
		{"no session", http.MethodGet, "/users/me", "", nil, http.StatusUnauthorized, "auth"},
		{"forged session", http.MethodGet, "/users", "JWT abc.def.ghi", nil, http.StatusUnauthorized, "auth"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := call(t, srv, tc.method, tc.path, tc.auth, tc.body)
			assert.Equal(t, tc.status, resp.StatusCode)
			body := decodeBody[httpx.ErrorBody](t, resp)
			assert.Equal(t, tc.kind, body.Error)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestMalformedBody(t *testing.T) {
	srv, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/users/login", strings.NewReader("{"))
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid request body", decodeBody[httpx.ErrorBody](t, resp).Message)
}

func TestHealthAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := call(t, srv, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))

	resp = call(t, srv, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
