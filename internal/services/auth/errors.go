// Copyright 2025 Sellerdesk GmbH
// Licensed under the EUPL-1.2

package auth

import "errors"

var (
	// ErrEmailTaken is returned when registering an email that already exists.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials merges "unknown user" and "wrong password" so the
	// API never leaks whether an account exists.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountDisabled is returned for deactivated accounts.
	ErrAccountDisabled = errors.New("account is disabled")
	// ErrInvalidEmail is returned for malformed email addresses.
	ErrInvalidEmail = errors.New("invalid email format")
)
