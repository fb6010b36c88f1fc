package inbound

import (
	"context"
	"net/http"

	"github.com/danuartha/authgate/internal/auth/usecase"
	"github.com/danuartha/authgate/internal/pkg/router"
)

type uc interface {
	Register(ctx context.Context, in usecase.RegisterInput) (*usecase.RegisterOutput, error)
	Login(ctx context.Context, in usecase.LoginInput) (*usecase.LoginOutput, error)
	VerifyLogin(ctx context.Context, in usecase.VerifyLoginInput) (*usecase.VerifyLoginOutput, error)

	Enable(ctx context.Context, in usecase.EnableInput) (*usecase.EnableOutput, error)
	VerifyAndEnable(ctx context.Context, in usecase.VerifyEnableInput) error
	Disable(ctx context.Context, in usecase.DisableInput) error
	GetStatus(ctx context.Context) (*usecase.StatusOutput, error)
	SendEmailOtp(ctx context.Context, in usecase.SendEmailOtpInput) error

	Profile(ctx context.Context) (*usecase.ProfileOutput, error)
}

// PublicEndpoints lists the routes reachable without a session token. The
// send-email-otp route authorizes itself through the pending token carried
// in the request body.
func PublicEndpoints() map[string]map[string]struct{} {
	return map[string]map[string]struct{}{
		http.MethodPost: {
			"/api/v1/auth/register":                  {},
			"/api/v1/auth/login":                     {},
			"/api/v1/auth/login/verify-otp":          {},
			"/api/v1/auth/two-factor/send-email-otp": {},
		},
	}
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Registration & login
	r.POST("/api/v1/auth/register", end.Register)
	r.POST("/api/v1/auth/login", end.Login)
	r.POST("/api/v1/auth/login/verify-otp", end.VerifyLogin)

	// Two-factor management (need authenticated, except send-email-otp)
	r.POST("/api/v1/auth/two-factor/enable", end.Enable)
	r.POST("/api/v1/auth/two-factor/verify-enable", end.VerifyEnable)
	r.POST("/api/v1/auth/two-factor/disable", end.Disable)
	r.GET("/api/v1/auth/two-factor/status", end.Status)
	r.POST("/api/v1/auth/two-factor/send-email-otp", end.SendEmailOtp)

	// Profile (need authenticated)
	r.GET("/api/v1/auth/profile", end.Profile)
}
