package email

import (
	"context"
	"log"
)

// LogSender writes outbound mail to the log instead of delivering it. Used
// in demo mode when no SMTP credentials are configured.
type LogSender struct{}

func NewLogSender() *LogSender {
	return &LogSender{}
}

func (LogSender) Send(_ context.Context, to, subject, body string) error {
	log.Printf("email (not sent) to=%s subject=%q body=%q", to, subject, body)
	return nil
}
