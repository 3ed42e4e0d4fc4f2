package impl

import (
	"context"
	"sync"
	"testing"
	"time"

	"account-auth/internal/dto"
	"account-auth/internal/store"
	"account-auth/internal/storetest"

	"github.com/stretchr/testify/require"
)

// fastArgon2 keeps hashing cheap in tests.
var fastArgon2 = Argon2Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

type sentMail struct {
	to, username, secret string
}

type stubMailer struct {
	mu            sync.Mutex
	verifications []sentMail
	resets        []sentMail
	err           error
}

func (m *stubMailer) SendVerification(ctx context.Context, to, username, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.verifications = append(m.verifications, sentMail{to: to, username: username, secret: code})
	return nil
}

func (m *stubMailer) SendPasswordReset(ctx context.Context, to, username, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.resets = append(m.resets, sentMail{to: to, username: username, secret: token})
	return nil
}

func (m *stubMailer) lastCode(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.verifications, "no verification email sent")
	return m.verifications[len(m.verifications)-1].secret
}

func (m *stubMailer) lastResetToken(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.resets, "no reset email sent")
	return m.resets[len(m.resets)-1].secret
}

func (m *stubMailer) resetCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.resets)
}

type testEnv struct {
	store  *store.Store
	mailer *stubMailer
	tokens *TokenServiceImpl
	auth   *AuthServiceImpl
	reset  *PasswordResetServiceImpl
	users  *UserServiceImpl
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st := storetest.New(t)
	mailer := &stubMailer{}
	passwords := NewPasswordServiceArgon2id(fastArgon2, 4)
	tokens, err := NewTokenServiceHS256(TokenConfig{
		Issuer:     "account-auth",
		Audience:   "clients",
		SigningKey: []byte("test-signing-key"),
	})
	require.NoError(t, err)

	return &testEnv{
		store:  st,
		mailer: mailer,
		tokens: tokens,
		auth:   NewAuthServiceImpl(st, passwords, tokens, mailer, nil),
		reset:  NewPasswordResetServiceImpl(st, passwords, mailer, time.Hour, nil),
		users:  NewUserServiceImpl(st),
	}
}

func loginRequest(email, password string) dto.LoginRequest {
	return dto.LoginRequest{Email: email, Password: password}
}
