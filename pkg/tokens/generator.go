package tokens

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const (
	// secretPrefix makes leaked tokens easy to grep for.
	secretPrefix = "rack_"
	secretLength = 32
)

// generateSecret creates a new token secret.
// Format: rack_<base64url(32 random bytes)>
func generateSecret() (string, error) {
	raw := make([]byte, secretLength)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return secretPrefix + base64.RawURLEncoding.EncodeToString(raw), nil
}
