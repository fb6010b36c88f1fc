package usecase

import (
	"context"

	"go.opentelemetry.io/otel/trace"

	"github.com/danuartha/authgate/internal/auth/entity"
	"github.com/danuartha/authgate/internal/pkg/clock"
	"github.com/danuartha/authgate/internal/pkg/config"
	"github.com/danuartha/authgate/internal/pkg/goerror"
	"github.com/danuartha/authgate/internal/pkg/hash"
	"github.com/danuartha/authgate/internal/pkg/instrument"
	"github.com/danuartha/authgate/internal/pkg/jwt"
	"github.com/danuartha/authgate/internal/pkg/otp"
	"github.com/danuartha/authgate/internal/pkg/uid"
	"github.com/danuartha/authgate/internal/pkg/validator"
)

// repoStore is the persistence contract the usecases need. MutateTwoFactor
// must serialize concurrent mutations of the same user's record; its fn may
// be invoked more than once on write conflicts and must not carry side
// effects beyond the record.
type repoStore interface {
	CreateUser(ctx context.Context, user entity.User) error
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	GetUserByID(ctx context.Context, id int64) (*entity.User, error)

	GetTwoFactor(ctx context.Context, userID int64) (*entity.TwoFactorRecord, error)
	SaveTwoFactor(ctx context.Context, rec entity.TwoFactorRecord) error
	DeleteTwoFactor(ctx context.Context, userID int64) error
	MutateTwoFactor(ctx context.Context, userID int64, fn func(rec *entity.TwoFactorRecord) error) error
}

type notifier interface {
	SendOTP(ctx context.Context, to, code string) error
}

type Usecase struct {
	store      repoStore
	notifier   notifier
	validator  validator.Validator
	cfg        config.Config
	bcrypt     hash.Hash
	argon2id   hash.Hash
	uid        uid.NumberID
	totp       otp.TOTPProvider
	emailOTP   otp.NumericGenerator
	backupCode otp.BackupCodeGenerator
	clock      clock.Clocker
	jwt        jwt.JWT
	ins        instrument.Instrumentation
}

type Dependency struct {
	Store      repoStore
	Notifier   notifier
	Validator  validator.Validator
	Config     config.Config
	Bcrypt     hash.Hash
	Argon2ID   hash.Hash
	UID        uid.NumberID
	Totp       otp.TOTPProvider
	EmailOTP   otp.NumericGenerator
	BackupCode otp.BackupCodeGenerator
	Clock      clock.Clocker
	JWT        jwt.JWT
	Instrument instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		store:      dep.Store,
		notifier:   dep.Notifier,
		validator:  dep.Validator,
		cfg:        dep.Config,
		bcrypt:     dep.Bcrypt,
		argon2id:   dep.Argon2ID,
		uid:        dep.UID,
		totp:       dep.Totp,
		emailOTP:   dep.EmailOTP,
		backupCode: dep.BackupCode,
		clock:      dep.Clock,
		jwt:        dep.JWT,
		ins:        dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("auth.usecase").Start(ctx, name)
}

func (s *Usecase) authenticated(ctx context.Context) (*jwt.Claims, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	return clm, nil
}
