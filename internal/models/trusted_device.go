// Copyright 2025 Sellerdesk GmbH
// Licensed under the EUPL-1.2

package models

import "time"

// TrustedDevice binds a client-supplied fingerprint to a user so that
// repeated logins from the same device can skip 2FA. Rows are unique per
// (user_id, fingerprint); re-trusting refreshes instead of duplicating.
// Expiry is enforced at read time, nothing actively deletes rows.
type TrustedDevice struct { //nolint:govet // fieldalignment: readability over optimization
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	Fingerprint string    `db:"fingerprint" json:"fingerprint"`
	DeviceName  string    `db:"device_name" json:"device_name"`
	IPAddress   string    `db:"ip_address" json:"ip_address"`
	UserAgent   string    `db:"user_agent" json:"user_agent"`
	LastUsedAt  time.Time `db:"last_used_at" json:"last_used_at"`
	ExpiresAt   time.Time `db:"expires_at" json:"expires_at"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Trusted reports whether the device can bypass 2FA at the given time.
func (d *TrustedDevice) Trusted(now time.Time) bool {
	return d.IsActive && d.ExpiresAt.After(now)
}
