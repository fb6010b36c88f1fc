package inbound

import (
	"github.com/danuartha/authgate/internal/auth/entity"
	"github.com/danuartha/authgate/internal/auth/usecase"
	"github.com/danuartha/authgate/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for authentication and two-factor
// workflows.
type HTTPEndpoint struct {
	uc uc
}

// Register creates a new account and returns a session token.
func (h *HTTPEndpoint) Register(r *router.Request) (any, error) {
	var req RegisterRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Register(r.Context(), usecase.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		return nil, err
	}

	return RegisterResponse{
		AccessToken: resp.AccessToken,
		User: UserResponse{
			ID:       resp.User.ID,
			Email:    resp.User.Email,
			FullName: resp.User.FullName,
		},
	}, nil
}

// Login authenticates a user and returns a session token or a two-factor
// challenge.
func (h *HTTPEndpoint) Login(r *router.Request) (any, error) {
	var req LoginRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Login(r.Context(), usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}

	out := LoginResponse{
		MfaRequired:  resp.MfaRequired,
		PendingToken: resp.PendingToken,
		AccessToken:  resp.AccessToken,
	}
	if resp.MfaRequired {
		out.Method = resp.Method.String()
	}
	if resp.User != nil {
		out.User = &UserResponse{
			ID:       resp.User.ID,
			Email:    resp.User.Email,
			FullName: resp.User.FullName,
		}
	}

	return out, nil
}

// VerifyLogin completes a two-factor challenge and issues a session token.
func (h *HTTPEndpoint) VerifyLogin(r *router.Request) (any, error) {
	var req VerifyLoginRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.VerifyLogin(r.Context(), usecase.VerifyLoginInput{
		PendingToken: req.PendingToken,
		Code:         req.Code,
	})
	if err != nil {
		return nil, err
	}

	return VerifyLoginResponse{
		AccessToken: resp.AccessToken,
		User: UserResponse{
			ID:       resp.User.ID,
			Email:    resp.User.Email,
			FullName: resp.User.FullName,
		},
	}, nil
}

// Enable starts two-factor enrollment for the authenticated user.
func (h *HTTPEndpoint) Enable(r *router.Request) (any, error) {
	var req EnableRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Enable(r.Context(), usecase.EnableInput{
		Method: entity.TwoFactorMethodFromString(req.Method),
	})
	if err != nil {
		return nil, err
	}

	return EnableResponse{
		Method:          resp.Method.String(),
		Secret:          resp.Secret,
		ProvisioningURI: resp.ProvisioningURI,
		BackupCodes:     resp.BackupCodes,
	}, nil
}

// VerifyEnable confirms a pending enrollment with a one-time code.
func (h *HTTPEndpoint) VerifyEnable(r *router.Request) (any, error) {
	var req VerifyEnableRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.VerifyAndEnable(r.Context(), usecase.VerifyEnableInput{Code: req.Code}); err != nil {
		return nil, err
	}

	return VerifyEnableResponse{}, nil
}

// Disable turns two-factor off after password re-verification.
func (h *HTTPEndpoint) Disable(r *router.Request) (any, error) {
	var req DisableRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.Disable(r.Context(), usecase.DisableInput{Password: req.Password}); err != nil {
		return nil, err
	}

	return DisableResponse{}, nil
}

// Status reports the authenticated user's two-factor state.
func (h *HTTPEndpoint) Status(r *router.Request) (any, error) {
	resp, err := h.uc.GetStatus(r.Context())
	if err != nil {
		return nil, err
	}

	out := StatusResponse{
		Enabled:         resp.Enabled,
		BackupCodesLeft: resp.BackupCodesLeft,
	}
	if resp.Method != nil {
		method := resp.Method.String()
		out.Method = &method
	}

	return out, nil
}

// SendEmailOtp issues a fresh email code, authorized either by a pending
// token in the body or by a session token.
func (h *HTTPEndpoint) SendEmailOtp(r *router.Request) (any, error) {
	var req SendEmailOtpRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	in := usecase.SendEmailOtpInput{
		PendingToken: req.PendingToken,
		SessionToken: r.BearerToken(),
	}
	if err := h.uc.SendEmailOtp(r.Context(), in); err != nil {
		return nil, err
	}

	return SendEmailOtpResponse{}, nil
}

// Profile returns the authenticated user's public profile.
func (h *HTTPEndpoint) Profile(r *router.Request) (any, error) {
	resp, err := h.uc.Profile(r.Context())
	if err != nil {
		return nil, err
	}

	return UserResponse{
		ID:       resp.ID,
		Email:    resp.Email,
		FullName: resp.FullName,
	}, nil
}
