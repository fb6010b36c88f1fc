package otp

import (
	"crypto/rand"
	"math/big"
	"strconv"
)

// NumericGenerator produces short numeric one-time codes for out-of-band
// delivery (email).
type NumericGenerator interface {
	// Generate returns a fresh code or an error if the random source fails.
	Generate() (string, error)
}

const (
	numericMin   = 100000
	numericRange = 900000
)

// SixDigit generates uniform 6-digit codes in [100000, 999999] using
// crypto/rand.
type SixDigit struct{}

// NewSixDigit returns a SixDigit generator.
func NewSixDigit() *SixDigit {
	return &SixDigit{}
}

// Generate returns a new 6-digit code.
func (g *SixDigit) Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(numericRange))
	if err != nil {
		return "", err
	}

	return strconv.FormatInt(numericMin+n.Int64(), 10), nil
}
