package mail

import (
	"context"
	"fmt"
	"html"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"go-gin-contacts/internal/core/config"
)

// Mailer 发送邮箱确认邮件
type Mailer interface {
	SendConfirmation(ctx context.Context, to, name, token string) error
}

type SMTPMailer struct {
	cfg     config.Mail
	baseURL string
	l       *zap.Logger
	send    func(m *gomail.Message) error
}

func NewSMTP(cfg config.Mail, baseURL string, l *zap.Logger) *SMTPMailer {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &SMTPMailer{
		cfg:     cfg,
		baseURL: strings.TrimRight(baseURL, "/"),
		l:       l,
		send:    func(m *gomail.Message) error { return d.DialAndSend(m) },
	}
}

func (s *SMTPMailer) ConfirmLink(token string) string {
	return s.baseURL + "/api/v1/auth/confirmed_email/" + token
}

func (s *SMTPMailer) SendConfirmation(ctx context.Context, to, name, token string) error {
	if s.cfg.Host == "" || s.cfg.From == "" {
		s.l.Warn("mail config missing, skip confirmation", zap.String("to", to))
		return nil
	}
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("empty recipient")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.send(s.message(to, name, token)); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	s.l.Info("confirmation email sent", zap.String("to", to))
	return nil
}

func (s *SMTPMailer) message(to, name, token string) *gomail.Message {
	m := gomail.NewMessage(gomail.SetEncoding(gomail.Unencoded))
	m.SetAddressHeader("From", s.cfg.From, s.cfg.FromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Confirm your email")
	if name == "" {
		name = to
	}
	m.SetBody("text/html", fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <div style="max-width: 520px; margin: 0 auto; padding: 16px;">
    <h2>Hi, %s</h2>
    <p>Please confirm your email address to activate your contacts account.</p>
    <p><a href="%s">Confirm email</a></p>
  </div>
</body>
</html>`, html.EscapeString(name), s.ConfirmLink(token)))
	return m
}

// Noop 未配置 SMTP 时使用，只打日志
type Noop struct{ L *zap.Logger }

func (n Noop) SendConfirmation(_ context.Context, to, _, _ string) error {
	n.L.Warn("mailer disabled, confirmation not sent", zap.String("to", to))
	return nil
}
