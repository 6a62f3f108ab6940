package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

const resetTokenSize = 32

// NewResetToken returns 32 random bytes, hex encoded
func NewResetToken() (string, error) {
	b := make([]byte, resetTokenSize)

	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}

// DigestToken is what gets stored in place of a raw reset token, so a
// database leak doesn't hand out working reset links.
func DigestToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
