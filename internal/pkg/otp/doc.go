// Package otp provides one-time proof material for two-factor flows.
//
// It covers the three code families the application uses: TOTP secrets and
// validation for authenticator apps, 6-digit numeric codes for email
// delivery, and single-use backup codes generated at enrollment.
package otp
