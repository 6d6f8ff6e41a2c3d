// Copyright 2025 Sellerdesk GmbH
// Licensed under the EUPL-1.2

// Package middleware provides echo middleware for the auth core.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sellerdesk/authcore/internal/auth"
	"github.com/sellerdesk/authcore/internal/models"
)

// TokenVerifier verifies a session token and returns its subject.
type TokenVerifier interface {
	Verify(token string) (int64, string, error)
}

// UserLoader loads the full user record for the token subject.
type UserLoader interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// RequireAuth verifies the bearer session token, loads the user into the
// request context and rejects deactivated accounts. Every verification
// failure is the same 401; the middleware never explains why.
func RequireAuth(tokens TokenVerifier, users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString := bearerToken(c.Request())
			if tokenString == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
			}

			userID, _, err := tokens.Verify(tokenString)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			}

			user, err := users.GetUserByID(c.Request().Context(), userID)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			}
			if !user.IsActive {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "account is disabled"})
			}

			ctx := auth.SetUser(c.Request().Context(), user)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get(echo.HeaderAuthorization)
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return header[len(prefix):]
	}
	return ""
}
