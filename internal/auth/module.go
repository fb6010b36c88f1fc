// Package auth is the authentication module: password login, registration,
// and the two-factor enrollment and verification flows.
package auth

import (
	"github.com/redis/go-redis/v9"

	"github.com/danuartha/authgate/internal/auth/inbound"
	"github.com/danuartha/authgate/internal/auth/outbound/mailer"
	"github.com/danuartha/authgate/internal/auth/outbound/store"
	"github.com/danuartha/authgate/internal/auth/usecase"
	"github.com/danuartha/authgate/internal/pkg/clock"
	"github.com/danuartha/authgate/internal/pkg/config"
	"github.com/danuartha/authgate/internal/pkg/hash"
	"github.com/danuartha/authgate/internal/pkg/instrument"
	"github.com/danuartha/authgate/internal/pkg/jwt"
	"github.com/danuartha/authgate/internal/pkg/mail"
	"github.com/danuartha/authgate/internal/pkg/otp"
	"github.com/danuartha/authgate/internal/pkg/router"
	"github.com/danuartha/authgate/internal/pkg/uid"
	"github.com/danuartha/authgate/internal/pkg/validator"
)

type Dependency struct {
	CacheConn  *redis.Client              `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	Bcrypt     hash.Hash                  `validate:"required"`
	Argon2ID   hash.Hash                  `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Totp       otp.TOTPProvider           `validate:"required"`
	EmailOTP   otp.NumericGenerator       `validate:"required"`
	BackupCode otp.BackupCodeGenerator    `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	JWT        jwt.JWT                    `validate:"required"`
	Mail       mail.Mail                  `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	repo := store.NewRedis(dep.CacheConn, dep.Instrument)
	otpMailer := mailer.New(dep.Mail, dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		Store:      repo,
		Notifier:   otpMailer,
		Validator:  dep.Validator,
		Config:     dep.Config,
		Bcrypt:     dep.Bcrypt,
		Argon2ID:   dep.Argon2ID,
		UID:        dep.UID,
		Totp:       dep.Totp,
		EmailOTP:   dep.EmailOTP,
		BackupCode: dep.BackupCode,
		Clock:      dep.Clock,
		JWT:        dep.JWT,
		Instrument: dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}
