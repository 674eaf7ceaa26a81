package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// NewRawToken returns an unguessable token for email verification and
// password resets. The raw value is sent to the user; only its hash is
// stored.
func NewRawToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// HashToken derives the storable one-way hash of a raw token.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
