package jwt

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidSigningMethod is returned when the JWT signing method is not supported.
	ErrInvalidSigningMethod = errors.New("invalid JWT signing method")

	// ErrSigningKeyTooShort is returned when the HS512 signing key is less than 64 bytes.
	ErrSigningKeyTooShort = errors.New("HS512 signing key must be at least 64 bytes (512 bits)")

	// ErrInvalidToken is returned for any verification failure: bad signature,
	// expired token, malformed payload. The cause is deliberately not exposed
	// so callers cannot distinguish a forged token from a stale one.
	ErrInvalidToken = errors.New("invalid token")
)

// JWT mints and validates the two token classes used by the application:
// full session tokens and short-lived pending tokens that only authorize
// completing a two-factor challenge.
type JWT interface {
	// GenerateSession creates a signed full-access token for the user.
	GenerateSession(uid int64, email string) (string, error)
	// GeneratePending creates a signed short-lived token that requires a
	// one-time code before it can be exchanged for a session.
	GeneratePending(uid int64, email string) (string, error)
	// Verify parses and validates the token and returns its claims.
	// Every failure is reported as ErrInvalidToken.
	Verify(tokenStr string) (Claims, error)
	// DecodeUnverified reads the claims without checking the signature or
	// expiry. Use only where the token is re-validated before it grants
	// anything, or where the result gates no privilege (resend of a mail
	// one-time code keyed by a pending token).
	DecodeUnverified(tokenStr string) (Claims, error)
}

type clocker interface {
	Now() time.Time
}

type generator interface {
	Generate() string
}

type jwtContextKey struct{}

// Config defines the inputs for building a JWT implementation.
type Config struct {
	// Secret is the HMAC signing key.
	Secret []byte
	// Issuer is the token issuer value.
	Issuer string
	// Audiences are the accepted token audiences.
	Audiences []string
	// SessionTTL is the full session token time-to-live (typically days).
	SessionTTL time.Duration
	// PendingTTL is the pending token time-to-live (typically minutes).
	PendingTTL time.Duration
	// Clock provides the current time source.
	Clock clocker
	// UUID generates token IDs.
	UUID generator
}

// GetAuth returns the JWT claims stored in the context, if any.
func GetAuth(ctx context.Context) *Claims {
	clm, ok := ctx.Value(jwtContextKey{}).(Claims)
	if !ok {
		return nil
	}

	return &clm
}

// SetAuth stores JWT claims in the context.
func SetAuth(ctx context.Context, clm Claims) context.Context {
	return context.WithValue(ctx, jwtContextKey{}, clm)
}
