package impl

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// tokenBytes gives verification codes and reset tokens 160 bits of entropy.
const tokenBytes = 20

func randomToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
