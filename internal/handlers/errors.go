// Copyright 2025 Sellerdesk GmbH
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sellerdesk/authcore/internal/services/auth"
	"github.com/sellerdesk/authcore/internal/services/otp"
)

// writeServiceError maps orchestrator errors onto the HTTP taxonomy.
// Messages stay generic anywhere credential existence is involved.
func writeServiceError(c echo.Context, err error) error {
	var pwErr *auth.PasswordValidationError

	switch {
	case errors.Is(err, auth.ErrEmailTaken):
		return c.JSON(http.StatusConflict, map[string]string{"error": "email already registered"})
	case errors.Is(err, auth.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
	case errors.Is(err, auth.ErrAccountDisabled):
		return c.JSON(http.StatusForbidden, map[string]string{"error": "account is disabled"})
	case errors.Is(err, otp.ErrInvalidCode):
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid or expired code"})
	case errors.Is(err, auth.ErrInvalidEmail):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid email format"})
	case errors.As(err, &pwErr):
		return c.JSON(http.StatusBadRequest, map[string]any{
			"error":   "password does not meet requirements",
			"details": pwErr.Messages(),
		})
	default:
		slog.Error("request_failed", "method", c.Request().Method, "uri", c.Request().RequestURI, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
