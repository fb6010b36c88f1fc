package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/danuartha/authgate/internal/auth/entity"
	"github.com/danuartha/authgate/internal/pkg/goerror"
)

type EnableInput struct {
	Method entity.TwoFactorMethod `validate:"required"`
}

type EnableOutput struct {
	Method entity.TwoFactorMethod

	// TOTP enrollment material, shown to the user exactly once.
	Secret          string
	ProvisioningURI string
	BackupCodes     []string
}

// Enable starts 2FA enrollment for the authenticated user. The record is
// written disabled and always replaces any prior unconfirmed configuration;
// VerifyAndEnable flips it on. For the email method a confirmation code is
// mailed immediately; for TOTP the secret, provisioning URI, and plaintext
// backup codes are returned for one-time display.
func (s *Usecase) Enable(ctx context.Context, in EnableInput) (*EnableOutput, error) {
	ctx, span := s.startSpan(ctx, "Enable")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	user, err := s.store.GetUserByID(ctx, clm.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user account not found", "user_id", clm.UserID)
		return nil, goerror.NewBusiness("account not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by id", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	switch in.Method {
	case entity.TwoFactorMethodTOTP:
		return s.enableTOTP(ctx, user)
	case entity.TwoFactorMethodEmail:
		return s.enableEmail(ctx, user)
	default:
		return nil, goerror.NewInvalidInput(nil, "method", "must be email or totp")
	}
}

func (s *Usecase) enableTOTP(ctx context.Context, user *entity.User) (*EnableOutput, error) {
	secret, uri, err := s.totp.Generate(user.Email)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate totp secret", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	codes, err := s.backupCode.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate backup codes", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	hashes := make([]string, 0, len(codes))
	for _, code := range codes {
		h, err := s.argon2id.Hash(code)
		if err != nil {
			slog.ErrorContext(ctx, "failed to hash backup code", "user_id", user.ID, "error", err)
			return nil, goerror.NewServer(err)
		}
		hashes = append(hashes, string(h))
	}

	rec := entity.TwoFactorRecord{
		UserID:      user.ID,
		Method:      entity.TwoFactorMethodTOTP,
		Enabled:     false,
		TOTPSecret:  secret,
		BackupCodes: hashes,
	}
	if err := s.store.SaveTwoFactor(ctx, rec); err != nil {
		slog.ErrorContext(ctx, "failed to repo save two-factor record", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &EnableOutput{
		Method:          entity.TwoFactorMethodTOTP,
		Secret:          secret,
		ProvisioningURI: uri,
		BackupCodes:     codes,
	}, nil
}

func (s *Usecase) enableEmail(ctx context.Context, user *entity.User) (*EnableOutput, error) {
	code, err := s.emailOTP.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate email otp", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	rec := entity.TwoFactorRecord{
		UserID:           user.ID,
		Method:           entity.TwoFactorMethodEmail,
		Enabled:          false,
		PendingOTP:       code,
		PendingOTPExpiry: s.clock.Now().Add(s.cfg.GetMinute("modules.auth.enable_otp_ttl_minutes")),
	}
	if err := s.store.SaveTwoFactor(ctx, rec); err != nil {
		slog.ErrorContext(ctx, "failed to repo save two-factor record", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.notifier.SendOTP(ctx, user.Email, code); err != nil {
		slog.ErrorContext(ctx, "failed to send email otp", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &EnableOutput{Method: entity.TwoFactorMethodEmail}, nil
}
