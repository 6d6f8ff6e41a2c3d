// Copyright 2025 Sellerdesk GmbH
// Licensed under the EUPL-1.2

package models

import "time"

// ConsentRecord is a user's current legal-agreement signature. A user has
// at most one row; re-signing updates it in place (last signature wins).
type ConsentRecord struct { //nolint:govet // fieldalignment: readability over optimization
	ID               int64     `db:"id" json:"id"`
	UserID           int64     `db:"user_id" json:"user_id"`
	SignaturePayload string    `db:"signature_payload" json:"signature_payload"`
	IPAddress        string    `db:"ip_address" json:"ip_address"`
	ContractVersion  string    `db:"contract_version" json:"contract_version"`
	SignedAt         time.Time `db:"signed_at" json:"signed_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}
