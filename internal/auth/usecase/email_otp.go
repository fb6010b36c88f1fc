package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/danuartha/authgate/internal/auth/entity"
	"github.com/danuartha/authgate/internal/pkg/goerror"
)

// issueEmailOTP writes a fresh code with the given validity window onto the
// user's record and dispatches it. The code is persisted before sending; a
// send failure surfaces as a hard error so the caller never believes a mail
// is in flight when it is not. The method is re-checked inside the mutation
// so a concurrent re-enrollment cannot end up with a code on a non-email
// record.
func (s *Usecase) issueEmailOTP(ctx context.Context, user *entity.User, ttl time.Duration) error {
	code, err := s.emailOTP.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate email otp", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}

	expiry := s.clock.Now().Add(ttl)
	errNotEmail := goerror.NewBusiness("two-factor authentication is not configured", goerror.CodeNotFound)

	err = s.store.MutateTwoFactor(ctx, user.ID, func(rec *entity.TwoFactorRecord) error {
		if rec.Method != entity.TwoFactorMethodEmail {
			return errNotEmail
		}

		rec.PendingOTP = code
		rec.PendingOTPExpiry = expiry
		return nil
	})
	if err != nil {
		var gerr *goerror.Error
		if errors.As(err, &gerr) {
			slog.WarnContext(ctx, "email two-factor no longer configured", "user_id", user.ID)
			return err
		}
		slog.ErrorContext(ctx, "failed to persist email otp", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}

	if err := s.notifier.SendOTP(ctx, user.Email, code); err != nil {
		slog.ErrorContext(ctx, "failed to send email otp", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
