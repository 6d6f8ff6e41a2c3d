// Copyright 2025 Sellerdesk GmbH
// Licensed under the EUPL-1.2

// Package otp issues and consumes time-boxed one-time codes.
package otp

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/sellerdesk/authcore/internal/models"
	"github.com/sellerdesk/authcore/internal/repository"
)

// CodeLength is the number of digits in a one-time code. Fixed-width
// numeric keeps the codes legible in email and SMS.
const CodeLength = 6

// ErrInvalidCode covers wrong, expired, superseded and already-used codes.
// The cases are deliberately indistinguishable to avoid oracle leakage.
var ErrInvalidCode = errors.New("invalid or expired code")

var codeSpace = new(big.Int).Exp(big.NewInt(10), big.NewInt(CodeLength), nil)

// Service is the one-time-code ledger.
type Service struct {
	repo *repository.Repository
}

// NewService creates an otp service on the given repository. Construct it
// on a transaction-scoped repository to consume codes atomically with
// other mutations.
func NewService(repo *repository.Repository) *Service {
	return &Service{repo: repo}
}

// Issue generates a fresh code for the (user, purpose) pair and stores it
// with the given ttl. Any older unused code for the same purpose is
// superseded from this point on.
func (s *Service) Issue(ctx context.Context, userID int64, purpose models.CodePurpose, ttl time.Duration) (string, error) {
	if !purpose.Valid() {
		return "", fmt.Errorf("issue code: unknown purpose %q", purpose)
	}

	code, err := GenerateCode()
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}

	record := &models.OneTimeCode{
		UserID:    userID,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: time.Now().UTC().Add(ttl),
	}
	if err := s.repo.CreateOneTimeCode(ctx, record); err != nil {
		return "", fmt.Errorf("store code: %w", err)
	}

	return code, nil
}

// Consume validates the supplied code against the most recently issued
// unused code for the (user, purpose) pair and marks it used. Only the
// newest code can ever succeed; mismatch, expiry and replay all return
// ErrInvalidCode.
func (s *Service) Consume(ctx context.Context, userID int64, purpose models.CodePurpose, supplied string) error {
	latest, err := s.repo.LatestUnusedCode(ctx, userID, purpose)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidCode
		}
		return fmt.Errorf("lookup code: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(latest.Code), []byte(supplied)) != 1 {
		return ErrInvalidCode
	}
	if latest.Expired(time.Now().UTC()) {
		return ErrInvalidCode
	}

	if err := s.repo.MarkCodeUsed(ctx, latest.ID, time.Now().UTC()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Lost the race against a concurrent consume.
			return ErrInvalidCode
		}
		return fmt.Errorf("mark code used: %w", err)
	}

	return nil
}

// GenerateCode draws a fixed-width numeric code from crypto/rand.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", CodeLength, n), nil
}
