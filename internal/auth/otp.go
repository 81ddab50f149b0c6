package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateOTP draws a 6-digit verification code uniformly from
// 100000-999999 using the platform CSPRNG.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
