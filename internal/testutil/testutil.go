// Copyright 2025 Sellerdesk GmbH
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sellerdesk/authcore/internal/database"
	"github.com/sellerdesk/authcore/internal/models"
	"github.com/sellerdesk/authcore/internal/repository"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// NewTestDB creates an in-memory SQLite database for tests.
// Returns both the database connection and the repository for convenience.
func NewTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db, repository.New(db)
}

// NewTestUser creates an active test user with the given password.
// The hash uses bcrypt.MinCost to keep tests fast.
func NewTestUser(t *testing.T, repo *repository.Repository, email, password string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  "Test User",
		IsActive:     true,
	}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	return user
}

// SentCode records one dispatched code mail.
type SentCode struct {
	To      string
	Code    string
	Purpose models.CodePurpose
	TTL     time.Duration
}

// RecorderSender is a mailer.Sender that records codes instead of
// sending them.
type RecorderSender struct {
	mu    sync.Mutex
	sent  []SentCode
	Fail  bool // when true, SendCode returns an error
	Error error
}

// NewRecorderSender creates a recording mail sender.
func NewRecorderSender() *RecorderSender {
	return &RecorderSender{}
}

// SendCode records the code, or fails when configured to.
func (r *RecorderSender) SendCode(_ context.Context, to, code string, purpose models.CodePurpose, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Fail {
		if r.Error != nil {
			return r.Error
		}
		return errFailedSend
	}
	r.sent = append(r.sent, SentCode{To: to, Code: code, Purpose: purpose, TTL: ttl})
	return nil
}

// Sent returns a copy of the recorded mails.
func (r *RecorderSender) Sent() []SentCode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]SentCode(nil), r.sent...)
}

// LastCode returns the most recently recorded code for the purpose.
func (r *RecorderSender) LastCode(purpose models.CodePurpose) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.sent) - 1; i >= 0; i-- {
		if r.sent[i].Purpose == purpose {
			return r.sent[i].Code
		}
	}
	return ""
}

var errFailedSend = errors.New("send failed")

// NewEchoContext creates an Echo context for handler tests.
func NewEchoContext(e *echo.Echo, method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}
