package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/danuartha/authgate/internal/pkg/goerror"
)

type DisableInput struct {
	Password string `validate:"required"`
}

// Disable re-verifies the account password and removes the two-factor record
// entirely. Re-enabling later requires full reconfiguration.
func (s *Usecase) Disable(ctx context.Context, in DisableInput) error {
	ctx, span := s.startSpan(ctx, "Disable")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return err
	}

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	user, err := s.store.GetUserByID(ctx, clm.UserID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by id", "user_id", clm.UserID, "error", err)
		return goerror.NewServer(err)
	}

	if !s.bcrypt.Verify(user.Password, in.Password) {
		slog.WarnContext(ctx, "password confirmation failed", "user_id", user.ID)
		return goerror.NewBusiness("invalid password", goerror.CodeUnauthorized)
	}

	if _, err := s.store.GetTwoFactor(ctx, user.ID); errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "two-factor not configured", "user_id", user.ID)
		return goerror.NewBusiness("two-factor authentication is not configured", goerror.CodeNotFound)
	} else if err != nil {
		slog.ErrorContext(ctx, "failed to repo get two-factor record", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}

	if err := s.store.DeleteTwoFactor(ctx, user.ID); err != nil {
		slog.ErrorContext(ctx, "failed to repo delete two-factor record", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
