// Copyright 2025 Sellerdesk GmbH
// Licensed under the EUPL-1.2

// Package models contains the persistence structs for the auth core.
package models

import "time"

// User is the central identity record. Accounts are never hard-deleted by
// the auth core; deactivation flips IsActive instead.
type User struct { //nolint:govet // fieldalignment: readability over optimization
	ID                int64      `db:"id" json:"id"`
	Email             string     `db:"email" json:"email"`
	PasswordHash      string     `db:"password_hash" json:"-"`
	DisplayName       string     `db:"display_name" json:"display_name"`
	IsVerified        bool       `db:"is_verified" json:"is_verified"`
	IsActive          bool       `db:"is_active" json:"is_active"`
	IsConsentSigned   bool       `db:"is_consent_signed" json:"is_consent_signed"`
	ConsentAcceptedAt *time.Time `db:"consent_accepted_at" json:"consent_accepted_at,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

// PublicUser is the projection returned to API clients after login or
// token verification. It never carries the password hash.
type PublicUser struct {
	ID                int64      `json:"id"`
	Email             string     `json:"email"`
	DisplayName       string     `json:"display_name"`
	IsVerified        bool       `json:"is_verified"`
	IsConsentSigned   bool       `json:"is_consent_signed"`
	ConsentAcceptedAt *time.Time `json:"consent_accepted_at,omitempty"`
}

// Public returns the API projection of the user.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:                u.ID,
		Email:             u.Email,
		DisplayName:       u.DisplayName,
		IsVerified:        u.IsVerified,
		IsConsentSigned:   u.IsConsentSigned,
		ConsentAcceptedAt: u.ConsentAcceptedAt,
	}
}
