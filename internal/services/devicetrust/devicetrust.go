// Copyright 2025 Sellerdesk GmbH
// Licensed under the EUPL-1.2

// Package devicetrust caches fingerprint→user bindings so repeated logins
// from a known device can skip 2FA.
package devicetrust

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sellerdesk/authcore/internal/models"
	"github.com/sellerdesk/authcore/internal/repository"
)

// TrustDuration is the trust window granted on (re-)trusting a device.
// Every trusted lookup slides the window forward by the same amount.
const TrustDuration = 30 * 24 * time.Hour

// Meta carries the request metadata stored alongside a trust binding.
type Meta struct {
	IPAddress string
	UserAgent string
}

// Service is the device trust cache.
type Service struct {
	repo *repository.Repository
}

// NewService creates a device trust service on the given repository.
func NewService(repo *repository.Repository) *Service {
	return &Service{repo: repo}
}

// Lookup reports whether the fingerprint is currently trusted for the user.
// A trusted hit refreshes last_used_at and slides expires_at forward; the
// refresh is best-effort and a failure does not revoke the trust decision.
func (s *Service) Lookup(ctx context.Context, userID int64, fingerprint string) bool {
	if fingerprint == "" {
		return false
	}

	device, err := s.repo.GetTrustedDevice(ctx, userID, fingerprint)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			slog.Warn("device_trust_lookup_failed", "user_id", userID, "error", err)
		}
		return false
	}

	now := time.Now().UTC()
	if !device.Trusted(now) {
		return false
	}

	if err := s.repo.TouchTrustedDevice(ctx, device.ID, now, now.Add(TrustDuration)); err != nil {
		slog.Warn("device_trust_refresh_failed", "user_id", userID, "device_id", device.ID, "error", err)
	}

	return true
}

// Trust upserts the trust binding for the fingerprint with a fresh expiry.
func (s *Service) Trust(ctx context.Context, userID int64, fingerprint string, meta Meta) error {
	if fingerprint == "" {
		return errors.New("fingerprint is required")
	}

	now := time.Now().UTC()
	device := &models.TrustedDevice{
		UserID:      userID,
		Fingerprint: fingerprint,
		DeviceName:  NameFromUserAgent(meta.UserAgent),
		IPAddress:   meta.IPAddress,
		UserAgent:   meta.UserAgent,
		LastUsedAt:  now,
		ExpiresAt:   now.Add(TrustDuration),
		IsActive:    true,
	}

	if err := s.repo.UpsertTrustedDevice(ctx, device); err != nil {
		return fmt.Errorf("upsert trusted device: %w", err)
	}
	return nil
}

// NameFromUserAgent derives a short human-readable device name from a
// User-Agent header. Best effort; unknown agents become "Unknown device".
func NameFromUserAgent(ua string) string {
	if ua == "" {
		return "Unknown device"
	}

	browser := "Browser"
	switch {
	case strings.Contains(ua, "Edg/"):
		browser = "Edge"
	case strings.Contains(ua, "OPR/"):
		browser = "Opera"
	case strings.Contains(ua, "Chrome/"):
		browser = "Chrome"
	case strings.Contains(ua, "Safari/"):
		browser = "Safari"
	case strings.Contains(ua, "Firefox/"):
		browser = "Firefox"
	}

	os := ""
	switch {
	case strings.Contains(ua, "Windows"):
		os = "Windows"
	case strings.Contains(ua, "Android"):
		os = "Android"
	case strings.Contains(ua, "iPhone"), strings.Contains(ua, "iPad"):
		os = "iOS"
	case strings.Contains(ua, "Mac OS X"):
		os = "macOS"
	case strings.Contains(ua, "Linux"):
		os = "Linux"
	}

	if os == "" {
		if browser == "Browser" {
			return "Unknown device"
		}
		return browser
	}
	return browser + " on " + os
}
