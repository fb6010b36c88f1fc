package jwt

import (
	"strconv"
	"time"

	libJWT "github.com/golang-jwt/jwt/v5"
)

// Claims wraps the registered claims with the application payload.
//
// The payload shape is shared by both token classes; RequiresOTP is the only
// discriminator between a pending token and a full session token.
type Claims struct {
	// RegisteredClaims holds the standard JWT claims.
	libJWT.RegisteredClaims
	// UserID is the authenticated user identifier.
	UserID int64 `json:"user_id,string"`
	// UserEmail is the authenticated user email.
	UserEmail string `json:"user_email"`
	// RequiresOTP marks a token that only authorizes completing a
	// two-factor challenge, never direct resource access.
	RequiresOTP bool `json:"requires_otp"`
}

// Symmetric implements JWT signing and verification using an HMAC secret.
type Symmetric struct {
	secret     []byte
	issuer     string
	audiences  []string
	sessionTTL time.Duration
	pendingTTL time.Duration
	clock      clocker
	uuid       generator
}

// NewHS512 constructs a Symmetric JWT implementation using HS512.
func NewHS512(cfg Config) (*Symmetric, error) {
	if len(cfg.Secret) < 64 {
		return nil, ErrSigningKeyTooShort
	}

	return &Symmetric{
		secret:     cfg.Secret,
		issuer:     cfg.Issuer,
		audiences:  cfg.Audiences,
		sessionTTL: cfg.SessionTTL,
		pendingTTL: cfg.PendingTTL,
		clock:      cfg.Clock,
		uuid:       cfg.UUID,
	}, nil
}

// GenerateSession creates a signed full-access JWT for the user.
func (s *Symmetric) GenerateSession(uid int64, email string) (string, error) {
	return s.generate(uid, email, s.sessionTTL, false)
}

// GeneratePending creates a signed JWT that still requires a one-time code.
func (s *Symmetric) GeneratePending(uid int64, email string) (string, error) {
	return s.generate(uid, email, s.pendingTTL, true)
}

func (s *Symmetric) generate(uid int64, email string, ttl time.Duration, requiresOTP bool) (string, error) {
	if len(s.secret) < 64 {
		return "", ErrSigningKeyTooShort
	}

	now := s.clock.Now()

	return libJWT.
		NewWithClaims(libJWT.SigningMethodHS512, Claims{
			RegisteredClaims: libJWT.RegisteredClaims{
				ID:        s.uuid.Generate(),
				Subject:   strconv.FormatInt(uid, 10),
				Issuer:    s.issuer,
				Audience:  s.audiences,
				IssuedAt:  libJWT.NewNumericDate(now),
				NotBefore: libJWT.NewNumericDate(now),
				ExpiresAt: libJWT.NewNumericDate(now.Add(ttl)),
			},
			UserID:      uid,
			UserEmail:   email,
			RequiresOTP: requiresOTP,
		}).
		SignedString(s.secret)
}

// Verify parses and validates a JWT string.
//
// It fails closed: signature mismatch, expiry, wrong issuer or audience, and
// malformed input all collapse into ErrInvalidToken.
func (s *Symmetric) Verify(tokenStr string) (Claims, error) {
	if len(s.secret) < 64 {
		return Claims{}, ErrSigningKeyTooShort
	}

	var claims Claims

	token, err := libJWT.ParseWithClaims(tokenStr, &claims,
		func(t *libJWT.Token) (any, error) {
			if t.Method != libJWT.SigningMethodHS512 {
				return nil, ErrInvalidSigningMethod
			}
			return s.secret, nil
		},
		libJWT.WithIssuer(s.issuer),
		libJWT.WithAudience(s.audiences...),
		libJWT.WithValidMethods([]string{libJWT.SigningMethodHS512.Alg()}),
		libJWT.WithIssuedAt(),
		libJWT.WithExpirationRequired(),
		libJWT.WithTimeFunc(s.clock.Now),
	)
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	return claims, nil
}

// DecodeUnverified extracts the claims without any signature or time checks.
func (s *Symmetric) DecodeUnverified(tokenStr string) (Claims, error) {
	var claims Claims

	parser := libJWT.NewParser(libJWT.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(tokenStr, &claims); err != nil {
		return Claims{}, ErrInvalidToken
	}

	return claims, nil
}
