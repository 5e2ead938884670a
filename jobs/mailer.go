package jobs

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// Mailer delivers transactional email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPMailer delivers through a plain SMTP relay (Mailpit locally).
type SMTPMailer struct {
	addr string
	from string
}

// NewSMTPMailer builds SMTPMailer instance.
func NewSMTPMailer(host string, port int, from string) *SMTPMailer {
	return &SMTPMailer{addr: fmt.Sprintf("%s:%d", host, port), from: from}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)

	if err := smtp.SendMail(m.addr, nil, m.from, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

var _ Mailer = (*SMTPMailer)(nil)
