package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/samber/lo"

	"github.com/danuartha/authgate/internal/auth/entity"
	"github.com/danuartha/authgate/internal/pkg/goerror"
	"github.com/danuartha/authgate/internal/pkg/jwt"
)

type VerifyLoginInput struct {
	PendingToken string `validate:"required"`
	Code         string `validate:"required,otpcode"`
}

type VerifyLoginOutput struct {
	AccessToken string
	User        *entity.User
}

// VerifyLogin completes a 2FA-gated login: it exchanges a pending token plus
// a valid one-time code for a full session token.
//
// For the TOTP method a backup code is accepted in place of an authenticator
// code and is consumed on use. For the email method, when no unexpired code
// is on record a fresh one is generated, stored, and mailed, and the call
// reports a retryable outcome so the client resubmits shortly.
func (s *Usecase) VerifyLogin(ctx context.Context, in VerifyLoginInput) (*VerifyLoginOutput, error) {
	ctx, span := s.startSpan(ctx, "VerifyLogin")
	defer span.End()

	in.Code = strings.TrimSpace(in.Code)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	claims, err := s.jwt.Verify(in.PendingToken)
	if err != nil || !claims.RequiresOTP {
		slog.WarnContext(ctx, "pending token rejected")
		return nil, goerror.NewBusiness("invalid or expired token", goerror.CodeUnauthorized)
	}

	rec, err := s.store.GetTwoFactor(ctx, claims.UserID)
	if errors.Is(err, goerror.ErrNotFound) || (err == nil && !rec.Enabled) {
		slog.WarnContext(ctx, "two-factor not enabled", "user_id", claims.UserID)
		return nil, goerror.NewBusiness("two-factor authentication is not enabled", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get two-factor record", "user_id", claims.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	switch rec.Method {
	case entity.TwoFactorMethodTOTP:
		if err := s.verifyTOTPOrBackup(ctx, claims.UserID, in.Code); err != nil {
			return nil, err
		}
	case entity.TwoFactorMethodEmail:
		if err := s.verifyEmailOTP(ctx, claims, in.Code); err != nil {
			return nil, err
		}
	default:
		slog.WarnContext(ctx, "two-factor method unrecognized", "user_id", claims.UserID)
		return nil, goerror.NewBusiness("two-factor authentication is not enabled", goerror.CodeUnauthorized)
	}

	user, err := s.store.GetUserByID(ctx, claims.UserID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by id", "user_id", claims.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	token, err := s.jwt.GenerateSession(user.ID, user.Email)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate session token", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &VerifyLoginOutput{AccessToken: token, User: user}, nil
}

func (s *Usecase) verifyTOTPOrBackup(ctx context.Context, userID int64, code string) error {
	now := s.clock.Now()
	errNotEnabled := goerror.NewBusiness("two-factor authentication is not enabled", goerror.CodeUnauthorized)
	errInvalid := goerror.NewBusiness("invalid code", goerror.CodeUnauthorized)

	err := s.store.MutateTwoFactor(ctx, userID, func(rec *entity.TwoFactorRecord) error {
		if !rec.Enabled || rec.Method != entity.TwoFactorMethodTOTP {
			return errNotEnabled
		}

		if s.totp.Validate(code, rec.TOTPSecret, now) {
			return nil
		}

		idx := lo.IndexOf(lo.Map(rec.BackupCodes, func(h string, _ int) bool {
			return s.argon2id.Verify(h, code)
		}), true)
		if idx < 0 {
			return errInvalid
		}

		// consume: a backup code authenticates exactly once
		rec.BackupCodes = lo.Reject(rec.BackupCodes, func(_ string, i int) bool {
			return i == idx
		})
		return nil
	})
	if err != nil {
		var gerr *goerror.Error
		if errors.As(err, &gerr) {
			slog.WarnContext(ctx, "totp login verification rejected", "user_id", userID)
			return err
		}
		slog.ErrorContext(ctx, "failed to verify totp login", "user_id", userID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}

func (s *Usecase) verifyEmailOTP(ctx context.Context, claims jwt.Claims, code string) error {
	newCode, err := s.emailOTP.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate email otp", "user_id", claims.UserID, "error", err)
		return goerror.NewServer(err)
	}

	now := s.clock.Now()
	expiry := now.Add(s.cfg.GetSecond("modules.auth.verify_otp_ttl_seconds"))
	errNotEnabled := goerror.NewBusiness("two-factor authentication is not enabled", goerror.CodeUnauthorized)
	errInvalid := goerror.NewBusiness("invalid code", goerror.CodeUnauthorized)

	var justSent bool
	err = s.store.MutateTwoFactor(ctx, claims.UserID, func(rec *entity.TwoFactorRecord) error {
		justSent = false

		if !rec.Enabled || rec.Method != entity.TwoFactorMethodEmail {
			return errNotEnabled
		}

		if !rec.OTPValid(now) {
			rec.PendingOTP = newCode
			rec.PendingOTPExpiry = expiry
			justSent = true
			return nil
		}

		if rec.PendingOTP != code {
			return errInvalid
		}

		rec.ClearPendingOTP()
		return nil
	})
	if err != nil {
		var gerr *goerror.Error
		if errors.As(err, &gerr) {
			slog.WarnContext(ctx, "email login verification rejected", "user_id", claims.UserID)
			return err
		}
		slog.ErrorContext(ctx, "failed to verify email otp", "user_id", claims.UserID, "error", err)
		return goerror.NewServer(err)
	}

	if justSent {
		if err := s.notifier.SendOTP(ctx, claims.UserEmail, newCode); err != nil {
			slog.ErrorContext(ctx, "failed to send email otp", "user_id", claims.UserID, "error", err)
			return goerror.NewServer(err)
		}
		return goerror.NewBusiness("a new code has been sent to your email", goerror.CodeRetry)
	}

	return nil
}
