package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/danuartha/authgate/internal/auth/entity"
	"github.com/danuartha/authgate/internal/pkg/goerror"
)

type RegisterInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,password"`
	FullName string `validate:"required,max=100"`
}

type RegisterOutput struct {
	User        entity.User
	AccessToken string
}

// Register creates a new account and issues a session token immediately.
// 2FA can be enrolled afterwards through the two-factor endpoints.
func (s *Usecase) Register(ctx context.Context, in RegisterInput) (*RegisterOutput, error) {
	ctx, span := s.startSpan(ctx, "Register")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))

	passHash, err := s.bcrypt.Hash(in.Password)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash password", "error", err)
		return nil, goerror.NewServer(err)
	}

	user := entity.User{
		ID:       s.uid.Generate(),
		Email:    email,
		FullName: strings.TrimSpace(in.FullName),
		Password: string(passHash),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, goerror.ErrConflict) {
			slog.WarnContext(ctx, "email already registered", "email", email)
			return nil, goerror.NewBusiness("email already registered", goerror.CodeConflict)
		}
		slog.ErrorContext(ctx, "failed to repo create user", "email", email, "error", err)
		return nil, goerror.NewServer(err)
	}

	token, err := s.jwt.GenerateSession(user.ID, user.Email)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate session token", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &RegisterOutput{User: user, AccessToken: token}, nil
}
