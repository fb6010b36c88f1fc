package otp

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// BackupCodeGenerator produces single-use fallback codes handed to the user
// at authenticator enrollment.
type BackupCodeGenerator interface {
	// Generate returns a set of unique backup codes or an error if the
	// random source fails.
	Generate() ([]string, error)
}

// backupAlphabet is the character set used for backup codes: digits and
// uppercase letters only, so codes survive being read aloud or written down.
const backupAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

const (
	backupCodeCount  = 10
	backupCodeLength = 8
)

// BackupCode generates cryptographically secure single-use backup codes.
//
// Each code is 8 characters drawn uniformly from backupAlphabet.
type BackupCode struct{}

// NewBackupCode returns a new BackupCode generator.
func NewBackupCode() *BackupCode {
	return &BackupCode{}
}

// Generate produces exactly 10 unique codes using crypto/rand.
func (bc *BackupCode) Generate() ([]string, error) {
	out := make([]string, 0, backupCodeCount)
	seen := make(map[string]struct{}, backupCodeCount)

	for len(out) < backupCodeCount {
		code, err := bc.generateCode()
		if err != nil {
			return nil, err
		}

		// extremely unlikely, but prevents accidental duplicates
		if _, ok := seen[code]; ok {
			continue
		}

		seen[code] = struct{}{}
		out = append(out, code)
	}

	return out, nil
}

func (bc *BackupCode) generateCode() (string, error) {
	var sb strings.Builder
	sb.Grow(backupCodeLength)

	for range backupCodeLength {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(backupAlphabet))))
		if err != nil {
			return "", err
		}
		sb.WriteByte(backupAlphabet[idx.Int64()])
	}

	return sb.String(), nil
}
