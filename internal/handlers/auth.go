// Copyright 2025 Sellerdesk GmbH
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	authctx "github.com/sellerdesk/authcore/internal/auth"
	"github.com/sellerdesk/authcore/internal/services/auth"
)

// RegisterRequest is the request body for account registration.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

// Register creates a new account and triggers the verification mail.
func (h *Handlers) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "email and password are required"})
	}

	user, err := h.auth.Register(c.Request().Context(), auth.RegisterParams{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.FullName,
	})
	if err != nil {
		return writeServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]any{"userId": user.ID})
}

// LoginRequest is the request body for the first login step.
type LoginRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	DeviceFingerprint string `json:"deviceFingerprint"`
}

// Login performs the first login step. A trusted device gets a session
// token immediately; everyone else gets a 2FA challenge by email.
func (h *Handlers) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "email and password are required"})
	}

	result, err := h.auth.Login(c.Request().Context(), req.Email, req.Password, req.DeviceFingerprint)
	if err != nil {
		return writeServiceError(c, err)
	}

	if result.TwoFactorRequired {
		return c.JSON(http.StatusOK, map[string]any{
			"userId":      result.User.ID,
			"requires2FA": true,
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"token": result.Token,
		"user":  result.User.Public(),
	})
}

// VerifyTwoFactorRequest is the request body for the second login step.
type VerifyTwoFactorRequest struct {
	UserID            int64  `json:"userId"`
	Code              string `json:"code"`
	TrustDevice       bool   `json:"trustDevice"`
	DeviceFingerprint string `json:"deviceFingerprint"`
}

// VerifyTwoFactor completes the login with a 2FA code and optionally
// trusts the device for future logins.
func (h *Handlers) VerifyTwoFactor(c echo.Context) error {
	var req VerifyTwoFactorRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.UserID == 0 || req.Code == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "userId and code are required"})
	}

	result, err := h.auth.VerifyTwoFactor(c.Request().Context(), auth.TwoFactorParams{
		UserID:      req.UserID,
		Code:        req.Code,
		TrustDevice: req.TrustDevice,
		Fingerprint: req.DeviceFingerprint,
		IPAddress:   c.RealIP(),
		UserAgent:   c.Request().UserAgent(),
	})
	if err != nil {
		return writeServiceError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"token": result.Token,
		"user":  result.User.Public(),
	})
}

// VerifyEmailRequest is the request body for email confirmation.
type VerifyEmailRequest struct {
	UserID int64  `json:"userId"`
	Code   string `json:"code"`
}

// VerifyEmail confirms an account's email address with a one-time code.
func (h *Handlers) VerifyEmail(c echo.Context) error {
	var req VerifyEmailRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.UserID == 0 || req.Code == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "userId and code are required"})
	}

	if err := h.auth.VerifyEmail(c.Request().Context(), req.UserID, req.Code); err != nil {
		return writeServiceError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "email verified"})
}

// EmailRequest is the request body for flows keyed only by email.
type EmailRequest struct {
	Email string `json:"email"`
}

// RequestPasswordReset issues a reset code for known accounts. It always
// reports success so the endpoint cannot be used for account enumeration.
func (h *Handlers) RequestPasswordReset(c echo.Context) error {
	var req EmailRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.Email == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "email is required"})
	}

	if err := h.auth.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		return writeServiceError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "if the account exists, a reset code has been sent"})
}

// ResendVerification issues a fresh verification code for unverified
// accounts. Always reports success, like the reset request.
func (h *Handlers) ResendVerification(c echo.Context) error {
	var req EmailRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.Email == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "email is required"})
	}

	if err := h.auth.ResendVerification(c.Request().Context(), req.Email); err != nil {
		return writeServiceError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "if the account exists, a verification code has been sent"})
}

// ResetPasswordRequest is the request body for completing a password reset.
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

// ResetPassword replaces the password after validating the reset code.
func (h *Handlers) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.Email == "" || req.Code == "" || req.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "email, code and newPassword are required"})
	}

	if err := h.auth.ResetPassword(c.Request().Context(), req.Email, req.Code, req.NewPassword); err != nil {
		return writeServiceError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "password updated"})
}

// VerifyToken returns the authenticated user for a valid bearer token.
func (h *Handlers) VerifyToken(c echo.Context) error {
	user := authctx.GetUser(c.Request().Context())
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
	}

	return c.JSON(http.StatusOK, map[string]any{"user": user.Public()})
}
