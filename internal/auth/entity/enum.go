package entity

// TwoFactorMethod enumerates the supported second factors.
type TwoFactorMethod int

const (
	// TwoFactorMethodUnknown is the zero value for unrecognized input.
	TwoFactorMethodUnknown TwoFactorMethod = iota
	// TwoFactorMethodEmail delivers one-time codes over email.
	TwoFactorMethodEmail
	// TwoFactorMethodTOTP uses an authenticator app with a shared secret.
	TwoFactorMethodTOTP
)

// String returns the wire representation of the method.
func (m TwoFactorMethod) String() string {
	switch m {
	case TwoFactorMethodEmail:
		return "email"
	case TwoFactorMethodTOTP:
		return "totp"
	default:
		return "unknown"
	}
}

// TwoFactorMethodFromString parses the wire representation of a method.
func TwoFactorMethodFromString(s string) TwoFactorMethod {
	switch s {
	case "email":
		return TwoFactorMethodEmail
	case "totp":
		return TwoFactorMethodTOTP
	default:
		return TwoFactorMethodUnknown
	}
}
