// Copyright 2025 Sellerdesk GmbH
// Licensed under the EUPL-1.2

package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPasswordValidator(t *testing.T) {
	v := DefaultPasswordValidator()

	tests := []struct {
		name      string
		password  string
		attrs     []string
		valid     bool
		errorCode string
	}{
		{name: "valid", password: "correct horse 1", valid: true},
		{name: "too short", password: "ab1", valid: false, errorCode: "min_length"},
		{name: "no letter", password: "12345678", valid: false, errorCode: "no_letter"},
		{name: "no digit", password: "abcdefgh", valid: false, errorCode: "no_digit"},
		{name: "contains email", password: "alice@example.com1", attrs: []string{"alice@example.com"}, valid: false, errorCode: "too_similar"},
		{name: "case insensitive similarity", password: "ALICE@EXAMPLE.COM1", attrs: []string{"alice@example.com"}, valid: false, errorCode: "too_similar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.Validate(tt.password, tt.attrs...)
			assert.Equal(t, tt.valid, result.Valid)
			if tt.errorCode != "" {
				codes := make([]string, len(result.Errors))
				for i, e := range result.Errors {
					codes[i] = e.Code
				}
				assert.Contains(t, codes, tt.errorCode)
			}
		})
	}
}

func TestPasswordValidationError(t *testing.T) {
	err := &PasswordValidationError{Errors: []ValidationError{
		{Code: "min_length", Message: "Password must be at least 8 characters long."},
		{Code: "no_digit", Message: "Password must contain at least one digit."},
	}}

	assert.Equal(t, "Password must be at least 8 characters long.", err.Error())
	assert.Len(t, err.Messages(), 2)
}
