// Copyright 2025 Sellerdesk GmbH
// Licensed under the EUPL-1.2

package mailer

import (
	"context"
	"log/slog"
	"time"

	"github.com/sellerdesk/authcore/internal/models"
)

// LogSender logs codes instead of mailing them. It backs development
// setups without an SMTP relay; never use it in production.
type LogSender struct{}

// NewLogSender creates a log-only sender.
func NewLogSender() *LogSender {
	return &LogSender{}
}

// SendCode logs the code that would have been mailed.
func (s *LogSender) SendCode(_ context.Context, to, code string, purpose models.CodePurpose, ttl time.Duration) error {
	slog.Info("code_mail_skipped", "to", to, "code", code, "purpose", purpose, "ttl", ttl)
	return nil
}
