// Copyright 2025 Sellerdesk GmbH
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/sellerdesk/authcore/internal/models"
)

// CreateOneTimeCode stores a freshly issued code.
func (r *Repository) CreateOneTimeCode(ctx context.Context, code *models.OneTimeCode) error {
	code.CreatedAt = time.Now().UTC()

	res, err := r.q.ExecContext(ctx,
		`INSERT INTO one_time_codes (user_id, code, purpose, expires_at, created_at) VALUES (?, ?, ?, ?, ?)`,
		code.UserID, code.Code, code.Purpose, code.ExpiresAt, code.CreatedAt)
	if err != nil {
		return err
	}

	code.ID, err = res.LastInsertId()
	return err
}

// LatestUnusedCode returns the most recently issued unused code for the
// (user, purpose) pair. Older unused codes are superseded by issuance of a
// newer one and can never be selected again.
func (r *Repository) LatestUnusedCode(ctx context.Context, userID int64, purpose models.CodePurpose) (*models.OneTimeCode, error) {
	var code models.OneTimeCode
	err := r.q.GetContext(ctx, &code,
		`SELECT * FROM one_time_codes
		 WHERE user_id = ? AND purpose = ? AND used_at IS NULL
		 ORDER BY created_at DESC, id DESC LIMIT 1`,
		userID, purpose)
	if err != nil {
		return nil, wrapError(err)
	}
	return &code, nil
}

// MarkCodeUsed records the one-way used_at transition. Returns ErrNotFound
// if the code was already consumed, so a replayed code cannot succeed twice.
func (r *Repository) MarkCodeUsed(ctx context.Context, id int64, usedAt time.Time) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE one_time_codes SET used_at = ? WHERE id = ? AND used_at IS NULL`,
		usedAt, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountUnusedCodes returns the number of unused codes for a (user, purpose)
// pair. Used by tests and diagnostics.
func (r *Repository) CountUnusedCodes(ctx context.Context, userID int64, purpose models.CodePurpose) (int64, error) {
	var count int64
	err := r.q.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM one_time_codes WHERE user_id = ? AND purpose = ? AND used_at IS NULL`,
		userID, purpose)
	return count, err
}
