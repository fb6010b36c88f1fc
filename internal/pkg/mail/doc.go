// Package mail defines the email delivery abstraction and its SMTP
// implementation. One-time passcode messages are the only traffic today.
package mail
