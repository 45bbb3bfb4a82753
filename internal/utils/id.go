package utils

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/google/uuid"
)

// InstanceIDPrefix marks instance ids minted on the device.
const InstanceIDPrefix = "uuid:"

// GenerateSecureToken creates a cryptographically secure random token.
func GenerateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// NewInstanceID returns a fresh instance id.
func NewInstanceID() string {
	return InstanceIDPrefix + uuid.NewString()
}
