// Package store persists user and two-factor records in a key-value layout
// keyed by user id. The Redis implementation serializes read-modify-write
// sequences per user with optimistic WATCH transactions; the in-memory
// implementation serves tests.
package store

import (
	"strconv"
	"time"

	"github.com/danuartha/authgate/internal/auth/entity"
)

const (
	userKeyPrefix      = "user:"
	userEmailKeyPrefix = "user:email:"
	twoFactorKeyPrefix = "2fa:"
)

func userKey(id int64) string {
	return userKeyPrefix + strconv.FormatInt(id, 10)
}

func userEmailKey(email string) string {
	return userEmailKeyPrefix + email
}

func twoFactorKey(userID int64) string {
	return twoFactorKeyPrefix + strconv.FormatInt(userID, 10)
}

type userRecord struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

type twoFactorRecord struct {
	UserID           int64     `json:"user_id"`
	Method           string    `json:"method"`
	Enabled          bool      `json:"enabled"`
	TOTPSecret       string    `json:"totp_secret,omitempty"`
	BackupCodes      []string  `json:"backup_codes,omitempty"`
	PendingOTP       string    `json:"pending_otp,omitempty"`
	PendingOTPExpiry time.Time `json:"pending_otp_expiry,omitempty"`
}

func toUserRecord(u entity.User) userRecord {
	return userRecord{ID: u.ID, Email: u.Email, FullName: u.FullName, Password: u.Password}
}

func (r userRecord) toEntity() *entity.User {
	return &entity.User{ID: r.ID, Email: r.Email, FullName: r.FullName, Password: r.Password}
}

func toTwoFactorRecord(rec entity.TwoFactorRecord) twoFactorRecord {
	return twoFactorRecord{
		UserID:           rec.UserID,
		Method:           rec.Method.String(),
		Enabled:          rec.Enabled,
		TOTPSecret:       rec.TOTPSecret,
		BackupCodes:      rec.BackupCodes,
		PendingOTP:       rec.PendingOTP,
		PendingOTPExpiry: rec.PendingOTPExpiry,
	}
}

func (r twoFactorRecord) toEntity() *entity.TwoFactorRecord {
	return &entity.TwoFactorRecord{
		UserID:           r.UserID,
		Method:           entity.TwoFactorMethodFromString(r.Method),
		Enabled:          r.Enabled,
		TOTPSecret:       r.TOTPSecret,
		BackupCodes:      r.BackupCodes,
		PendingOTP:       r.PendingOTP,
		PendingOTPExpiry: r.PendingOTPExpiry,
	}
}
