// Copyright 2025 Sellerdesk GmbH
// Licensed under the EUPL-1.2

// Package consent maintains the legal-agreement signing ledger and keeps
// it consistent with the user's consent flag.
package consent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sellerdesk/authcore/internal/models"
	"github.com/sellerdesk/authcore/internal/repository"
)

// Status is the read projection of a user's consent state.
type Status struct {
	Signed           bool       `json:"signed"`
	SignedAt         *time.Time `json:"signed_at,omitempty"`
	SignaturePayload string     `json:"signature_payload,omitempty"`
	ContractVersion  string     `json:"contract_version,omitempty"`
}

// Service is the consent ledger.
type Service struct {
	repo *repository.Repository
}

// NewService creates a consent service on the given repository.
func NewService(repo *repository.Repository) *Service {
	return &Service{repo: repo}
}

// Sign upserts the user's single current signature and sets the user's
// consent flag in the same transaction. Re-signing replaces the existing
// record in place; last signature wins.
func (s *Service) Sign(ctx context.Context, userID int64, payload, ipAddress, contractVersion string) error {
	signedAt := time.Now().UTC()

	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		record := &models.ConsentRecord{
			UserID:           userID,
			SignaturePayload: payload,
			IPAddress:        ipAddress,
			ContractVersion:  contractVersion,
			SignedAt:         signedAt,
		}
		if err := tx.UpsertConsentRecord(ctx, record); err != nil {
			return fmt.Errorf("upsert consent record: %w", err)
		}
		if err := tx.SetUserConsentSigned(ctx, userID, signedAt); err != nil {
			return fmt.Errorf("set consent flag: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("consent_signed", "user_id", userID, "contract_version", contractVersion)
	return nil
}

// Status returns the user's consent state, derived from the record itself
// rather than the user flag. When a record exists but the flag has drifted
// to false (a partial-failure state), the read repairs the flag before
// returning. The repair is a deliberate consistency mechanism: its own
// failure is logged and never fails the read, and the read never reports
// signed=false while a record exists.
func (s *Service) Status(ctx context.Context, userID int64) (*Status, error) {
	record, err := s.repo.GetConsentRecord(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &Status{Signed: false}, nil
		}
		return nil, fmt.Errorf("get consent record: %w", err)
	}

	s.healConsentFlag(ctx, userID, record)

	return &Status{
		Signed:           true,
		SignedAt:         &record.SignedAt,
		SignaturePayload: record.SignaturePayload,
		ContractVersion:  record.ContractVersion,
	}, nil
}

// healConsentFlag repairs a drifted is_consent_signed flag opportunistically.
func (s *Service) healConsentFlag(ctx context.Context, userID int64, record *models.ConsentRecord) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		slog.Warn("consent_heal_lookup_failed", "user_id", userID, "error", err)
		return
	}
	if user.IsConsentSigned {
		return
	}

	if err := s.repo.SetUserConsentSigned(ctx, userID, record.SignedAt); err != nil {
		slog.Warn("consent_heal_failed", "user_id", userID, "error", err)
		return
	}
	slog.Info("consent_flag_healed", "user_id", userID)
}
