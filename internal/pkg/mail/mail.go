package mail

import (
	"context"
	"io"
)

// Message represents an email payload.
//
// Fields are provider-agnostic so the same message can be delivered over
// SMTP or a third-party API.
type Message struct {
	// From is an optional explicit sender; implementations fall back to a
	// configured default when empty.
	From string
	// To lists the recipients.
	To []string
	// Subject is the email subject line.
	Subject string
	// TextBody is the plain-text body.
	TextBody string
	// HTMLBody is the optional HTML body.
	HTMLBody string
}

// Mail abstracts an email provider.
type Mail interface {
	io.Closer
	// Send dispatches the given message using the underlying provider.
	Send(ctx context.Context, msg Message) error
}
