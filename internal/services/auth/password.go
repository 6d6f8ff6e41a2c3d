// Copyright 2025 Sellerdesk GmbH
// Licensed under the EUPL-1.2

package auth

import (
	"fmt"
	"strings"
	"unicode"
)

// PasswordValidator validates passwords against various criteria.
type PasswordValidator struct {
	MinLength     int
	RequireLetter bool
	RequireDigit  bool
}

// DefaultPasswordValidator returns a validator with sensible defaults.
func DefaultPasswordValidator() *PasswordValidator {
	return &PasswordValidator{
		MinLength:     8,
		RequireLetter: true,
		RequireDigit:  true,
	}
}

// ValidationError represents a single password validation error.
type ValidationError struct {
	Code    string
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

// PasswordValidationError wraps multiple validation errors.
type PasswordValidationError struct {
	Errors []ValidationError
}

func (e *PasswordValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "password validation failed"
	}
	return e.Errors[0].Message
}

// Messages returns all error messages.
func (e *PasswordValidationError) Messages() []string {
	messages := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		messages[i] = err.Message
	}
	return messages
}

// ValidationResult holds all validation errors.
type ValidationResult struct {
	Valid  bool
	Errors []ValidationError
}

// Validate checks a password against all configured validators. The email
// is treated as a user attribute the password must not contain.
func (v *PasswordValidator) Validate(password string, userAttributes ...string) ValidationResult {
	var errs []ValidationError

	if len(password) < v.MinLength {
		errs = append(errs, ValidationError{
			Code:    "min_length",
			Message: fmt.Sprintf("Password must be at least %d characters long.", v.MinLength),
		})
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if v.RequireLetter && !hasLetter {
		errs = append(errs, ValidationError{
			Code:    "no_letter",
			Message: "Password must contain at least one letter.",
		})
	}

	if v.RequireDigit && !hasDigit {
		errs = append(errs, ValidationError{
			Code:    "no_digit",
			Message: "Password must contain at least one digit.",
		})
	}

	for _, attr := range userAttributes {
		if attr == "" {
			continue
		}
		if strings.Contains(strings.ToLower(password), strings.ToLower(attr)) {
			errs = append(errs, ValidationError{
				Code:    "too_similar",
				Message: "Password is too similar to your personal information.",
			})
			break
		}
	}

	return ValidationResult{
		Valid:  len(errs) == 0,
		Errors: errs,
	}
}
