package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMatching(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := fmt.Errorf("register: %w", ErrVerificationEmail.Wrap(cause))

	assert.ErrorIs(t, err, ErrVerificationEmail)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrEmailTaken)
	assert.Equal(t, KindDependency, KindOf(err))
	assert.Equal(t, "unable to send verification email", MessageOf(err))
	assert.Equal(t, "register: unable to send verification email: dial tcp: timeout", err.Error())
}

func TestErrorDefaults(t *testing.T) {
	plain := errors.New("boom")
	assert.Equal(t, ErrorKind(""), KindOf(plain))
	assert.Equal(t, "internal error", MessageOf(plain))

	// Same kind, different message.
	assert.NotErrorIs(t, ErrInvalidResetToken, ErrInvalidResetRequest)
}
