// Copyright 2025 Sellerdesk GmbH
// Licensed under the EUPL-1.2

// Package mailer delivers one-time codes by email.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sellerdesk/authcore/internal/config"
	"github.com/sellerdesk/authcore/internal/i18n"
	"github.com/sellerdesk/authcore/internal/models"
	"github.com/wneessen/go-mail"
)

// Sender is the outbound notification capability consumed by the auth
// orchestrator. Delivery is fire-and-forget from the caller's point of
// view; the orchestrator logs failures and carries on.
type Sender interface {
	SendCode(ctx context.Context, to, code string, purpose models.CodePurpose, ttl time.Duration) error
}

// SMTP sends code emails via an SMTP relay using go-mail.
type SMTP struct {
	cfg *config.SMTPConfig
}

// NewSMTP creates an SMTP sender.
func NewSMTP(cfg *config.SMTPConfig) (*SMTP, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("SMTP from address is required")
	}
	return &SMTP{cfg: cfg}, nil
}

// SendCode sends a localized email carrying the one-time code. Subject and
// body are selected by purpose via the i18n bundle; the locale comes from
// the request context.
func (s *SMTP) SendCode(ctx context.Context, to, code string, purpose models.CodePurpose, ttl time.Duration) error {
	mailID := uuid.New().String()

	subject := i18n.T(ctx, "otp_subject_"+purpose.String())
	body := i18n.TData(ctx, "otp_body_"+purpose.String(), map[string]any{
		"Code":    code,
		"Minutes": int(ttl.Minutes()),
	})

	if err := s.send(to, subject, body); err != nil {
		return fmt.Errorf("send code mail %s: %w", mailID, err)
	}

	slog.Info("code_mail_sent", "mail_id", mailID, "purpose", purpose)
	return nil
}

// send sends an email via SMTP using go-mail.
func (s *SMTP) send(to, subject, body string) error {
	msg := mail.NewMsg()

	if s.cfg.FromName != "" {
		if err := msg.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := msg.From(s.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	}

	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting to address: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
	}

	// Implicit TLS (SSL) for port 465, STARTTLS for others.
	if s.cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		if s.cfg.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if s.cfg.Username != "" && s.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	if err := client.DialAndSend(msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	return nil
}
