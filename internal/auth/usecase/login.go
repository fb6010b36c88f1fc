package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/danuartha/authgate/internal/auth/entity"
	"github.com/danuartha/authgate/internal/pkg/goerror"
)

type LoginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type LoginOutput struct {
	MfaRequired  bool
	PendingToken string
	Method       entity.TwoFactorMethod
	//
	AccessToken string
	User        *entity.User
}

// Login verifies the password and either issues a session token directly or,
// when 2FA is active, a short-lived pending token. For the email method the
// login-time code is generated and dispatched here so the user finds it in
// their inbox before the verify step.
func (s *Usecase) Login(ctx context.Context, in LoginInput) (*LoginOutput, error) {
	ctx, span := s.startSpan(ctx, "Login")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user account not found", "email", email)
		return nil, goerror.NewBusiness("invalid email or password", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by email", "email", email, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !s.bcrypt.Verify(user.Password, in.Password) {
		slog.WarnContext(ctx, "password user account not match", "user_id", user.ID)
		return nil, goerror.NewBusiness("invalid email or password", goerror.CodeUnauthorized)
	}

	rec, err := s.store.GetTwoFactor(ctx, user.ID)
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo get two-factor record", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if rec == nil || !rec.Enabled {
		token, err := s.jwt.GenerateSession(user.ID, user.Email)
		if err != nil {
			slog.ErrorContext(ctx, "failed to generate session token", "user_id", user.ID, "error", err)
			return nil, goerror.NewServer(err)
		}

		return &LoginOutput{AccessToken: token, User: user}, nil
	}

	pending, err := s.jwt.GeneratePending(user.ID, user.Email)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate pending token", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if rec.Method == entity.TwoFactorMethodEmail {
		if err := s.issueEmailOTP(ctx, user, s.cfg.GetSecond("modules.auth.login_otp_ttl_seconds")); err != nil {
			return nil, err
		}
	}

	return &LoginOutput{
		MfaRequired:  true,
		PendingToken: pending,
		Method:       rec.Method,
	}, nil
}
