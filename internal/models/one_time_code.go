// Copyright 2025 Sellerdesk GmbH
// Licensed under the EUPL-1.2

package models

import (
	"fmt"
	"time"
)

// CodePurpose is the closed set of flows a one-time code can belong to.
// The type exists so that a typo cannot silently create a new, unvalidated
// purpose in the ledger.
type CodePurpose string

const (
	PurposeEmailVerification CodePurpose = "email_verification"
	PurposeTwoFactorLogin    CodePurpose = "2fa_login"
	PurposePasswordReset     CodePurpose = "password_reset"
)

// Valid reports whether the purpose is one of the known values.
func (p CodePurpose) Valid() bool {
	switch p {
	case PurposeEmailVerification, PurposeTwoFactorLogin, PurposePasswordReset:
		return true
	}
	return false
}

func (p CodePurpose) String() string {
	return string(p)
}

// ParseCodePurpose converts a raw string into a CodePurpose.
func ParseCodePurpose(s string) (CodePurpose, error) {
	p := CodePurpose(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown code purpose %q", s)
	}
	return p, nil
}

// OneTimeCode is an ephemeral numeric credential. Rows are immutable after
// creation except for the one-way UsedAt transition; superseded or expired
// codes are left in place and simply fail validation.
type OneTimeCode struct { //nolint:govet // fieldalignment: readability over optimization
	ID        int64       `db:"id" json:"id"`
	UserID    int64       `db:"user_id" json:"user_id"`
	Code      string      `db:"code" json:"-"`
	Purpose   CodePurpose `db:"purpose" json:"purpose"`
	ExpiresAt time.Time   `db:"expires_at" json:"expires_at"`
	UsedAt    *time.Time  `db:"used_at" json:"used_at,omitempty"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
}

// Expired reports whether the code's validity window has passed.
func (c *OneTimeCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// Used reports whether the code has already been consumed.
func (c *OneTimeCode) Used() bool {
	return c.UsedAt != nil
}
