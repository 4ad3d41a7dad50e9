package registration

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// tokenBytes gives 256 bits of entropy, making tokens unguessable in practice.
const tokenBytes = 32

// NewConfirmationToken returns a fresh hex-encoded confirmation token.
func NewConfirmationToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate confirmation token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
