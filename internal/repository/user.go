// Copyright 2025 Sellerdesk GmbH
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/sellerdesk/authcore/internal/models"
)

// CreateUser creates a new user and fills in its ID and timestamps.
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := r.q.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, display_name, is_verified, is_active, is_consent_signed, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.Email, user.PasswordHash, user.DisplayName, user.IsVerified, user.IsActive, user.IsConsentSigned,
		user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return err
	}

	user.ID, err = res.LastInsertId()
	return err
}

// GetUserByID retrieves a user by their ID.
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.q.GetContext(ctx, &user, `SELECT * FROM users WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by their email address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.q.GetContext(ctx, &user, `SELECT * FROM users WHERE email = ?`, email); err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// EmailExists checks if a user with the given email exists.
func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.q.GetContext(ctx, &count, `SELECT COUNT(*) FROM users WHERE email = ?`, email); err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateUserPassword replaces a user's password hash.
func (r *Repository) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash, time.Now().UTC(), id)
	return err
}

// MarkUserVerified sets the is_verified flag.
func (r *Repository) MarkUserVerified(ctx context.Context, id int64) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE users SET is_verified = 1, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), id)
	return err
}

// SetUserConsentSigned sets the consent flag and acceptance timestamp.
func (r *Repository) SetUserConsentSigned(ctx context.Context, id int64, acceptedAt time.Time) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE users SET is_consent_signed = 1, consent_accepted_at = ?, updated_at = ? WHERE id = ?`,
		acceptedAt, time.Now().UTC(), id)
	return err
}

// DeactivateUser disables an account. The auth core never hard-deletes users.
func (r *Repository) DeactivateUser(ctx context.Context, id int64) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE users SET is_active = 0, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), id)
	return err
}
