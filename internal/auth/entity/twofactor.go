package entity

import "time"

// TwoFactorRecord holds a user's second-factor configuration. At most one
// record exists per user; a record with Enabled=false is an enrollment still
// awaiting confirmation.
type TwoFactorRecord struct {
	UserID  int64
	Method  TwoFactorMethod
	Enabled bool

	// TOTPSecret is the base32 shared secret, present only for MethodTOTP.
	TOTPSecret string
	// BackupCodes are argon2id hashes of the unconsumed single-use codes.
	BackupCodes []string

	// PendingOTP and PendingOTPExpiry hold the transient email code awaiting
	// verification. Cleared after use or replaced on re-issue.
	PendingOTP       string
	PendingOTPExpiry time.Time
}

// OTPValid reports whether the record carries a pending email code that has
// not yet expired at the given time.
func (r *TwoFactorRecord) OTPValid(now time.Time) bool {
	return r.PendingOTP != "" && now.Before(r.PendingOTPExpiry)
}

// ClearPendingOTP removes the transient email code fields.
func (r *TwoFactorRecord) ClearPendingOTP() {
	r.PendingOTP = ""
	r.PendingOTPExpiry = time.Time{}
}
