package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPSender delivers single-recipient text mail over plain-auth SMTP.
type SMTPSender struct {
	host string
	port string
	auth smtp.Auth
	from string
}

func NewSMTPSender(host, port, username, password, from string) *SMTPSender {
	return &SMTPSender{
		host: host,
		port: port,
		auth: smtp.PlainAuth("", username, password, host),
		from: from,
	}
}

func (s *SMTPSender) Send(_ context.Context, to, subject, body string) error {
	msg := strings.Join([]string{
		"From: " + s.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")

	addr := s.host + ":" + s.port
	if err := smtp.SendMail(addr, s.auth, s.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}
