// Copyright 2025 Sellerdesk GmbH
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/sellerdesk/authcore/internal/models"
)

// GetConsentRecord returns the user's current consent signature.
func (r *Repository) GetConsentRecord(ctx context.Context, userID int64) (*models.ConsentRecord, error) {
	var record models.ConsentRecord
	err := r.q.GetContext(ctx, &record,
		`SELECT * FROM consent_records WHERE user_id = ?`, userID)
	if err != nil {
		return nil, wrapError(err)
	}
	return &record, nil
}

// UpsertConsentRecord inserts the user's consent signature or replaces the
// existing one in place. Last signature wins; no history is retained.
func (r *Repository) UpsertConsentRecord(ctx context.Context, record *models.ConsentRecord) error {
	now := time.Now().UTC()
	if record.SignedAt.IsZero() {
		record.SignedAt = now
	}
	record.UpdatedAt = now

	_, err := r.q.ExecContext(ctx,
		`INSERT INTO consent_records (user_id, signature_payload, ip_address, contract_version, signed_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET
		     signature_payload = excluded.signature_payload,
		     ip_address = excluded.ip_address,
		     contract_version = excluded.contract_version,
		     signed_at = excluded.signed_at,
		     updated_at = excluded.updated_at`,
		record.UserID, record.SignaturePayload, record.IPAddress, record.ContractVersion,
		record.SignedAt, record.UpdatedAt)
	return err
}
