package dto

import "account-auth/internal/domain"

// Profile is the public subset of a credential record. It is the only shape
// of an account that leaves the service.
type Profile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Verified bool   `json:"verified"`
}

func ProfileOf(u *domain.User) Profile {
	return Profile{
		ID:       u.ID.String(),
		Username: u.Username,
		Email:    u.Email,
		Verified: u.Verified,
	}
}
