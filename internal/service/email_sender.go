package service

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/nextai/nextai/internal/config"
)

type EmailSender interface {
	Send(to, subject, body string) error
}

type smtpSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewEmailSender returns a gomail SMTP sender, or a noop sender when mail is
// not configured so signup still works in dev setups.
func NewEmailSender(cfg config.MailConfig) EmailSender {
	if cfg.Host == "" || cfg.Port == 0 || cfg.From == "" {
		return noopSender{}
	}
	return &smtpSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpSender) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

type noopSender struct{}

func (noopSender) Send(to, subject, body string) error {
	return nil
}

func verificationMailBody(code string, minutes int) string {
	return fmt.Sprintf(`
		<h3>Confirm your email</h3>
		<p>Your Next-AI verification code is <strong>%s</strong>.</p>
		<p>It expires in %d minutes. If you did not sign up, you can ignore this email.</p>
	`, code, minutes)
}

func resetMailBody(code string, minutes int) string {
	return fmt.Sprintf(`
		<h3>Password reset requested</h3>
		<p>Use the following code to reset your password: <strong>%s</strong></p>
		<p>It expires in %d minutes. If you did not request this change, you can ignore this email.</p>
	`, code, minutes)
}
