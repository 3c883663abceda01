package webauthn

import (
	"encoding/base64"
	"strings"
)

// DecodeBase64 decodes a wire field regardless of the variant the
// authenticator used: standard or URL-safe alphabet, padded or not.
func DecodeBase64(s string) ([]byte, error) {
	if len(s) > 1 {
		if s[len(s)-2] == '=' {
			s = s[:len(s)-2]
		} else if s[len(s)-1] == '=' {
			s = s[:len(s)-1]
		}
	}
	s = strings.ReplaceAll(s, "-", "+")
	s = strings.ReplaceAll(s, "_", "/")
	return base64.RawStdEncoding.DecodeString(s)
}
