// Package mailer delivers one-time passcodes to users over the mail
// abstraction.
package mailer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"

	"github.com/danuartha/authgate/internal/pkg/instrument"
	"github.com/danuartha/authgate/internal/pkg/mail"
)

// Mailer sends one-time passcode emails.
type Mailer struct {
	mail   mail.Mail
	tracer trace.Tracer
}

// New constructs a Mailer on top of the given mail provider.
func New(m mail.Mail, ins instrument.Instrumentation) *Mailer {
	return &Mailer{
		mail:   m,
		tracer: ins.Tracer("auth.mailer"),
	}
}

// SendOTP delivers a verification code to the given address. The failure of
// the underlying provider is returned as-is; callers treat it as a hard
// operation failure.
func (m *Mailer) SendOTP(ctx context.Context, to, code string) error {
	ctx, span := m.tracer.Start(ctx, "SendOTP")
	defer span.End()

	return m.mail.Send(ctx, mail.Message{
		To:       []string{to},
		Subject:  "Your verification code",
		TextBody: fmt.Sprintf("Your verification code is %s. It expires shortly; do not share it with anyone.", code),
	})
}
