package util

import (
	"crypto/rand"
	"encoding/base64"
	"io"
)

const (
	challengeSize    = 32
	sessionTokenSize = 32
)

// GenerateChallenge returns the random single-use value the client
// must echo back signed. WebAuthn requires at least 16 bytes; 32 is
// what the major implementations use.
func GenerateChallenge() ([]byte, error) {
	b := make([]byte, challengeSize)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, err
	}
	return b, nil
}

// GenerateSessionToken returns an unguessable session identifier.
func GenerateSessionToken() (string, error) {
	b := make([]byte, sessionTokenSize)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
