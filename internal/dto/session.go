package dto

import "time"

// SessionClaims is what a verified session token asserts about its bearer.
// It reflects the account at issue time, not its live state.
type SessionClaims struct {
	ID        string
	Email     string
	Username  string
	Verified  bool
	ExpiresAt time.Time
}
