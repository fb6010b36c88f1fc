package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/danuartha/authgate/internal/auth/entity"
	"github.com/danuartha/authgate/internal/pkg/goerror"
)

type VerifyEnableInput struct {
	Code string `validate:"required,otpcode"`
}

// VerifyAndEnable confirms a pending enrollment by checking the submitted
// code against the record's method and, on success, turns the second factor
// on. A matching but stale email code reports expiry, not an invalid code.
func (s *Usecase) VerifyAndEnable(ctx context.Context, in VerifyEnableInput) error {
	ctx, span := s.startSpan(ctx, "VerifyAndEnable")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return err
	}

	in.Code = strings.TrimSpace(in.Code)

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	now := s.clock.Now()
	errExpired := goerror.NewBusiness("verification code has expired", goerror.CodeUnauthorized)
	errInvalid := goerror.NewBusiness("invalid code", goerror.CodeUnauthorized)

	err = s.store.MutateTwoFactor(ctx, clm.UserID, func(rec *entity.TwoFactorRecord) error {
		switch rec.Method {
		case entity.TwoFactorMethodTOTP:
			if !s.totp.Validate(in.Code, rec.TOTPSecret, now) {
				return errInvalid
			}

		case entity.TwoFactorMethodEmail:
			if rec.PendingOTP == "" {
				return errInvalid
			}
			if !now.Before(rec.PendingOTPExpiry) {
				return errExpired
			}
			if rec.PendingOTP != in.Code {
				return errInvalid
			}

		default:
			return errInvalid
		}

		rec.Enabled = true
		rec.ClearPendingOTP()
		return nil
	})

	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "two-factor not configured", "user_id", clm.UserID)
		return goerror.NewBusiness("two-factor authentication is not configured", goerror.CodeNotFound)
	}
	if err != nil {
		var gerr *goerror.Error
		if errors.As(err, &gerr) {
			slog.WarnContext(ctx, "enrollment verification rejected", "user_id", clm.UserID)
			return err
		}
		slog.ErrorContext(ctx, "failed to verify enrollment", "user_id", clm.UserID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
