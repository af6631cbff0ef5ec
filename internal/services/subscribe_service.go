package services

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"prismtech.dev/internal/config"
	"prismtech.dev/internal/validation"
)

// ErrMailNotConfigured is returned when no SMTP server is set up
var ErrMailNotConfigured = errors.New("email not configured")

// Mail is one outbound message
type Mail struct {
	To      string
	ReplyTo string
	Subject string
	Body    string
}

// Mailer sends mail
type Mailer interface {
	Send(ctx context.Context, m Mail) error
}

// SMTPMailer sends mail through an authenticated SMTP server. Port 465
// uses implicit TLS; other ports upgrade with STARTTLS.
type SMTPMailer struct {
	cfg     config.SMTPConfig
	timeout time.Duration
}

// NewSMTPMailer returns nil when cfg is incomplete
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	if !cfg.Enabled() {
		return nil
	}
	return &SMTPMailer{cfg: cfg, timeout: 15 * time.Second}
}

// Send delivers m, giving up at ctx's deadline or the dial timeout
func (m *SMTPMailer) Send(ctx context.Context, msg Mail) error {
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	dialer := &net.Dialer{Timeout: m.timeout}

	var conn net.Conn
	var err error
	if m.cfg.Port == 465 {
		conn, err = (&tls.Dialer{NetDialer: dialer, Config: &tls.Config{ServerName: m.cfg.Host}}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("failed to dial smtp: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(m.timeout))
	}

	c, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open smtp session: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok && m.cfg.Port != 465 {
		if err := c.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	if err := c.Auth(smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := c.Mail(m.cfg.User); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := c.Rcpt(msg.To); err != nil {
		return fmt.Errorf("smtp rcpt: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(formatMail(m.cfg.User, msg)); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp data close: %w", err)
	}
	return c.Quit()
}

var headerSafe = strings.NewReplacer("\r", "", "\n", "")

func formatMail(from string, m Mail) []byte {
	var b strings.Builder
	b.WriteString("From: " + headerSafe.Replace(from) + "\r\n")
	b.WriteString("To: " + headerSafe.Replace(m.To) + "\r\n")
	if m.ReplyTo != "" {
		b.WriteString("Reply-To: " + headerSafe.Replace(m.ReplyTo) + "\r\n")
	}
	b.WriteString("Subject: " + headerSafe.Replace(m.Subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(strings.ReplaceAll(m.Body, "\n", "\r\n"))
	return []byte(b.String())
}

// SubscribeRequest is a newsletter signup
type SubscribeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// SubscribeService forwards newsletter signups to the site owner
type SubscribeService struct {
	mailer Mailer
	owner  string
	logger *zap.Logger
}

// NewSubscribeService creates a new SubscribeService. A nil mailer
// disables subscriptions.
func NewSubscribeService(mailer Mailer, owner string, logger *zap.Logger) *SubscribeService {
	return &SubscribeService{mailer: mailer, owner: owner, logger: logger}
}

// Subscribe notifies the owner of a new subscriber. Send failures are
// not retried.
func (s *SubscribeService) Subscribe(ctx context.Context, req SubscribeRequest) error {
	if err := validation.Struct(&req); err != nil {
		return err
	}
	if s.mailer == nil || s.owner == "" {
		return ErrMailNotConfigured
	}

	email := strings.TrimSpace(req.Email)
	err := s.mailer.Send(ctx, Mail{
		To:      s.owner,
		ReplyTo: email,
		Subject: "New newsletter subscriber",
		Body:    "New subscriber: " + email + "\n",
	})
	if err != nil {
		s.logger.Warn("subscribe mail failed", zap.String("subscriber", email), zap.Error(err))
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	s.logger.Info("new subscriber", zap.String("subscriber", email))
	return nil
}
