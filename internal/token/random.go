package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

const (
	verificationCodeBytes = 3
	resetTokenBytes       = 20
	csrfTokenBytes        = 32
)

// VerificationCode returns a 6-character lower-case hex code.
func VerificationCode() (string, error) {
	return randomHex(verificationCodeBytes)
}

// ResetToken returns a 40-character hex secret for password reset links.
func ResetToken() (string, error) {
	return randomHex(resetTokenBytes)
}

func CSRFToken() (string, error) {
	return randomHex(csrfTokenBytes)
}

func randomHex(n int) (string, error) {
	raw := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(raw), nil
}
