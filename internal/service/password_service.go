package service

import "context"

type PasswordService interface {
	// Hash returns a self-describing, salted hash of password.
	Hash(ctx context.Context, password string) (string, error)
	// Verify reports whether password matches hash. A mismatch is (false, nil);
	// only a malformed hash is an error.
	Verify(ctx context.Context, hash, password string) (bool, error)
}
