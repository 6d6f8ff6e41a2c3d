// Copyright 2025 Sellerdesk GmbH
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/sellerdesk/authcore/internal/models"
)

// GetTrustedDevice retrieves the device row for a (user, fingerprint) pair.
// Expiry is not filtered here; the caller decides what counts as trusted.
func (r *Repository) GetTrustedDevice(ctx context.Context, userID int64, fingerprint string) (*models.TrustedDevice, error) {
	var device models.TrustedDevice
	err := r.q.GetContext(ctx, &device,
		`SELECT * FROM trusted_devices WHERE user_id = ? AND fingerprint = ?`,
		userID, fingerprint)
	if err != nil {
		return nil, wrapError(err)
	}
	return &device, nil
}

// UpsertTrustedDevice inserts a device row or refreshes the existing one on
// the unique (user_id, fingerprint) key. Re-trusting reactivates the row.
func (r *Repository) UpsertTrustedDevice(ctx context.Context, device *models.TrustedDevice) error {
	now := time.Now().UTC()
	device.CreatedAt = now

	_, err := r.q.ExecContext(ctx,
		`INSERT INTO trusted_devices (user_id, fingerprint, device_name, ip_address, user_agent, last_used_at, expires_at, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?)
		 ON CONFLICT (user_id, fingerprint) DO UPDATE SET
		     device_name = excluded.device_name,
		     ip_address = excluded.ip_address,
		     user_agent = excluded.user_agent,
		     last_used_at = excluded.last_used_at,
		     expires_at = excluded.expires_at,
		     is_active = 1`,
		device.UserID, device.Fingerprint, device.DeviceName, device.IPAddress, device.UserAgent,
		device.LastUsedAt, device.ExpiresAt, device.CreatedAt)
	return err
}

// TouchTrustedDevice updates the usage and expiry timestamps of a device.
func (r *Repository) TouchTrustedDevice(ctx context.Context, id int64, lastUsedAt, expiresAt time.Time) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE trusted_devices SET last_used_at = ?, expires_at = ? WHERE id = ?`,
		lastUsedAt, expiresAt, id)
	return err
}
