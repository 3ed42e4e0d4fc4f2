package domain

import "errors"

type ErrorKind string

const (
	KindValidation  ErrorKind = "validation"
	KindConflict    ErrorKind = "conflict"
	KindNotFound    ErrorKind = "not_found"
	KindAuth        ErrorKind = "auth"
	KindDependency  ErrorKind = "dependency"
	KindFatal       ErrorKind = "fatal"
	KindRateLimited ErrorKind = "rate_limited"
)

// Error is the error type returned by every account workflow. Message is safe
// to show to clients; Err keeps the underlying cause for logs.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func NewError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same kind and message, so a sentinel still
// matches after Wrap attached a cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// Wrap returns a copy of e carrying cause.
func (e *Error) Wrap(cause error) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, Err: cause}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// MessageOf returns the client-facing message of err.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "internal error"
}

var (
	ErrPasswordMismatch        = NewError(KindValidation, "passwords do not match")
	ErrEmailTaken              = NewError(KindConflict, "email already taken")
	ErrVerificationEmail       = NewError(KindDependency, "unable to send verification email")
	ErrInvalidVerificationCode = NewError(KindNotFound, "invalid verification code")
	ErrInvalidCredentials      = NewError(KindAuth, "invalid email or password")
	ErrEmailNotVerified        = NewError(KindAuth, "email not verified")
	ErrInvalidSessionToken     = NewError(KindAuth, "invalid session token")
	ErrInvalidResetToken       = NewError(KindValidation, "invalid reset password token")
	ErrInvalidResetRequest     = NewError(KindValidation, "invalid reset request")
	ErrUserNotFound            = NewError(KindNotFound, "user not found")
	ErrRateLimited             = NewError(KindRateLimited, "too many login attempts")
	ErrMissingSigningKey       = NewError(KindFatal, "signing key is not configured")
	ErrMalformedHash           = NewError(KindFatal, "malformed password hash")
)
