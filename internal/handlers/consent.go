// Copyright 2025 Sellerdesk GmbH
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	authctx "github.com/sellerdesk/authcore/internal/auth"
)

// SignConsentRequest is the request body for signing the legal agreement.
type SignConsentRequest struct {
	SignaturePayload string `json:"signaturePayload"`
	ContractVersion  string `json:"contractVersion"`
}

// SignConsent records the authenticated user's agreement signature.
func (h *Handlers) SignConsent(c echo.Context) error {
	user := authctx.GetUser(c.Request().Context())
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
	}

	var req SignConsentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.SignaturePayload == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "signaturePayload is required"})
	}

	err := h.auth.SignConsent(c.Request().Context(), user.ID, req.SignaturePayload, c.RealIP(), req.ContractVersion)
	if err != nil {
		return writeServiceError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

// ConsentStatus reports whether the user has signed the agreement.
func (h *Handlers) ConsentStatus(c echo.Context) error {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid userId"})
	}

	status, err := h.auth.ConsentStatus(c.Request().Context(), userID)
	if err != nil {
		return writeServiceError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]bool{"signed": status.Signed})
}

// ConsentSignature returns the stored signature for the user.
func (h *Handlers) ConsentSignature(c echo.Context) error {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid userId"})
	}

	status, err := h.auth.ConsentStatus(c.Request().Context(), userID)
	if err != nil {
		return writeServiceError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"signed":           status.Signed,
		"signaturePayload": status.SignaturePayload,
		"signedAt":         status.SignedAt,
	})
}
