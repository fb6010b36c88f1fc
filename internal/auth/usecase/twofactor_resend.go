package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/danuartha/authgate/internal/auth/entity"
	"github.com/danuartha/authgate/internal/pkg/goerror"
)

type SendEmailOtpInput struct {
	// PendingToken authorizes the mid-login resend path.
	PendingToken string
	// SessionToken authorizes the deliberate resend by a logged-in user.
	// The route is public, so the bearer token is verified here rather
	// than by the authentication middleware.
	SessionToken string
}

// SendEmailOtp issues a fresh email code for a user with an email-method
// record, replacing whatever code was pending.
//
// The pending-token path reads the subject id without signature validation:
// the result grants nothing beyond a mail to the account's own address, and
// the token is fully re-verified by VerifyLogin before a session is minted.
func (s *Usecase) SendEmailOtp(ctx context.Context, in SendEmailOtpInput) error {
	ctx, span := s.startSpan(ctx, "SendEmailOtp")
	defer span.End()

	userID, err := s.resendSubject(ctx, in)
	if err != nil {
		return err
	}

	rec, err := s.store.GetTwoFactor(ctx, userID)
	if errors.Is(err, goerror.ErrNotFound) || (err == nil && rec.Method != entity.TwoFactorMethodEmail) {
		slog.WarnContext(ctx, "email two-factor not configured", "user_id", userID)
		return goerror.NewBusiness("two-factor authentication is not configured", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get two-factor record", "user_id", userID, "error", err)
		return goerror.NewServer(err)
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by id", "user_id", userID, "error", err)
		return goerror.NewServer(err)
	}

	return s.issueEmailOTP(ctx, user, s.cfg.GetSecond("modules.auth.resend_otp_ttl_seconds"))
}

func (s *Usecase) resendSubject(ctx context.Context, in SendEmailOtpInput) (int64, error) {
	if in.PendingToken != "" {
		claims, err := s.jwt.DecodeUnverified(in.PendingToken)
		if err != nil || !claims.RequiresOTP {
			slog.WarnContext(ctx, "pending token unreadable")
			return 0, goerror.NewBusiness("invalid or expired token", goerror.CodeUnauthorized)
		}
		return claims.UserID, nil
	}

	if in.SessionToken != "" {
		claims, err := s.jwt.Verify(in.SessionToken)
		if err != nil || claims.RequiresOTP {
			slog.WarnContext(ctx, "session token rejected")
			return 0, goerror.NewBusiness("invalid or expired token", goerror.CodeUnauthorized)
		}
		return claims.UserID, nil
	}

	return 0, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
}
