package usecase

import (
	"context"
	"log/slog"

	"github.com/danuartha/authgate/internal/pkg/goerror"
)

type ProfileOutput struct {
	ID       int64
	Email    string
	FullName string
}

// Profile returns the authenticated user's public profile.
func (s *Usecase) Profile(ctx context.Context) (*ProfileOutput, error) {
	ctx, span := s.startSpan(ctx, "Profile")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByID(ctx, clm.UserID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by id", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &ProfileOutput{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName,
	}, nil
}
