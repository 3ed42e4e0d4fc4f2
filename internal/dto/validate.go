package dto

import (
	"net/mail"
	"strings"

	"account-auth/internal/domain"
)

const (
	minUsernameLength = 6
	minPasswordLength = 6
)

type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Violations is the result of validating a request; empty means valid.
type Violations []Violation

func (v *Violations) add(field, msg string) {
	*v = append(*v, Violation{Field: field, Message: msg})
}

// Err folds the violations into a single validation error, or nil.
func (v Violations) Err() error {
	if len(v) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(v))
	for _, violation := range v {
		msgs = append(msgs, violation.Field+": "+violation.Message)
	}
	return domain.NewError(domain.KindValidation, strings.Join(msgs, "; "))
}

func (r RegisterRequest) Validate() Violations {
	var v Violations
	if !validEmail(r.Email) {
		v.add("email", "must be a valid email address")
	}
	if len(strings.TrimSpace(r.Username)) < minUsernameLength {
		v.add("username", "must be at least 6 characters")
	}
	if len(r.Password) < minPasswordLength {
		v.add("password", "must be at least 6 characters")
	}
	return v
}

func (r LoginRequest) Validate() Violations {
	var v Violations
	if strings.TrimSpace(r.Email) == "" {
		v.add("email", "is required")
	}
	if r.Password == "" {
		v.add("password", "is required")
	}
	return v
}

func (r ResetPasswordSaveRequest) Validate() Violations {
	var v Violations
	if len(r.Password) < minPasswordLength {
		v.add("password", "must be at least 6 characters")
	}
	if strings.TrimSpace(r.ResetPasswordToken) == "" {
		v.add("resetPasswordToken", "is required")
	}
	return v
}

// validEmail accepts a bare address only; display names are rejected.
func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
