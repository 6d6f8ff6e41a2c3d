// Copyright 2025 Sellerdesk GmbH
// Licensed under the EUPL-1.2

// Package handlers contains the JSON HTTP handlers for the auth core.
package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sellerdesk/authcore/internal/services/auth"
)

// Handlers contains all HTTP handlers.
type Handlers struct {
	auth *auth.Service
}

// New creates a new Handlers instance.
func New(authService *auth.Service) *Handlers {
	return &Handlers{auth: authService}
}

// Health returns the health status.
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
