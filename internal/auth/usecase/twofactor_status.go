package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/danuartha/authgate/internal/auth/entity"
	"github.com/danuartha/authgate/internal/pkg/goerror"
)

type StatusOutput struct {
	Enabled bool
	// Method is nil when no record exists.
	Method *entity.TwoFactorMethod
	// BackupCodesLeft counts unconsumed backup codes for TOTP enrollments.
	BackupCodesLeft int
}

// GetStatus reports the authenticated user's two-factor state. An absent
// record reads as disabled with no method.
func (s *Usecase) GetStatus(ctx context.Context) (*StatusOutput, error) {
	ctx, span := s.startSpan(ctx, "GetStatus")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	rec, err := s.store.GetTwoFactor(ctx, clm.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		return &StatusOutput{}, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get two-factor record", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	method := rec.Method
	return &StatusOutput{
		Enabled:         rec.Enabled,
		Method:          &method,
		BackupCodesLeft: len(rec.BackupCodes),
	}, nil
}
