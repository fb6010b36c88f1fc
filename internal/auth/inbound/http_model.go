package inbound

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type RegisterResponse struct {
	AccessToken string       `json:"access_token"`
	User        UserResponse `json:"user"`
}

func (RegisterResponse) Message() string {
	return "Registration successful."
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	MfaRequired  bool   `json:"mfa_required,omitempty"`
	PendingToken string `json:"pending_token,omitempty"`
	Method       string `json:"method,omitempty"`
	//
	AccessToken string        `json:"access_token,omitempty"`
	User        *UserResponse `json:"user,omitempty"`
}

type VerifyLoginRequest struct {
	PendingToken string `json:"pending_token"`
	Code         string `json:"code"`
}

type VerifyLoginResponse struct {
	AccessToken string       `json:"access_token"`
	User        UserResponse `json:"user"`
}

type EnableRequest struct {
	Method string `json:"method"`
}

type EnableResponse struct {
	Method          string   `json:"method"`
	Secret          string   `json:"secret,omitempty"`
	ProvisioningURI string   `json:"provisioning_uri,omitempty"`
	BackupCodes     []string `json:"backup_codes,omitempty"`
}

func (EnableResponse) Message() string {
	return "Two-factor enrollment started. Verify a code to activate it."
}

type VerifyEnableRequest struct {
	Code string `json:"code"`
}

type VerifyEnableResponse struct{}

func (VerifyEnableResponse) Message() string {
	return "Two-factor authentication is now enabled."
}

type DisableRequest struct {
	Password string `json:"password"`
}

type DisableResponse struct{}

func (DisableResponse) Message() string {
	return "Two-factor authentication has been disabled."
}

type StatusResponse struct {
	Enabled         bool    `json:"enabled"`
	Method          *string `json:"method"`
	BackupCodesLeft int     `json:"backup_codes_left,omitempty"`
}

type SendEmailOtpRequest struct {
	PendingToken string `json:"pending_token,omitempty"`
}

type SendEmailOtpResponse struct{}

func (SendEmailOtpResponse) Message() string {
	return "A new code has been sent to your email."
}

type UserResponse struct {
	ID       int64  `json:"id,string"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}
