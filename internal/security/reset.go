package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

const resetSecretBytes = 32

// GenerateResetSecret returns a secret made of 32 random bytes in hex
// followed by the user id, along with the hash that gets persisted.
func GenerateResetSecret(userID string) (string, string, error) {
	buf := make([]byte, resetSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("generate reset secret: %w", err)
	}

	secret := hex.EncodeToString(buf) + userID
	return secret, HashResetSecret(secret), nil
}

func HashResetSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
