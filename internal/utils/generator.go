package utils

import (
	"crypto/rand"
	"encoding/base32"
)

// GenerateReferralCode returns a random 8-character uppercase invite code.
func GenerateReferralCode() (string, error) {
	b := make([]byte, 5)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(b)[:8], nil
}
