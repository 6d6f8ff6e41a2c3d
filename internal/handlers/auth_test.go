// Copyright 2025 Sellerdesk GmbH
// Licensed under the EUPL-1.2

package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sellerdesk/authcore/internal/handlers"
	"github.com/sellerdesk/authcore/internal/models"
	"github.com/sellerdesk/authcore/internal/repository"
	"github.com/sellerdesk/authcore/internal/services/auth"
	"github.com/sellerdesk/authcore/internal/services/token"
	"github.com/sellerdesk/authcore/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	echo     *echo.Echo
	handlers *handlers.Handlers
	repo     *repository.Repository
	sender   *testutil.RecorderSender
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	_, repo := testutil.NewTestDB(t)
	sender := testutil.NewRecorderSender()
	tokens := token.NewService("test-secret", time.Hour)
	svc := auth.NewService(repo, tokens, sender, bcrypt.MinCost)
	return &testEnv{
		echo:     echo.New(),
		handlers: handlers.New(svc),
		repo:     repo,
		sender:   sender,
	}
}

func decodeBody(t *testing.T, body string) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	return out
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	c, rec := testutil.NewEchoContext(env.echo, http.MethodGet, "/health", nil)

	require.NoError(t, env.handlers.Health(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec.Body.String())["status"])
}

func TestRegisterHandler(t *testing.T) {
	env := newTestEnv(t)
	body := `{"email":"alice@example.com","password":"correct horse 1","fullName":"Alice Example"}`
	c, rec := testutil.NewEchoContext(env.echo, http.MethodPost, "/register", strings.NewReader(body))

	require.NoError(t, env.handlers.Register(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeBody(t, rec.Body.String())
	assert.NotZero(t, resp["userId"])
	assert.NotEmpty(t, env.sender.LastCode(models.PurposeEmailVerification))
}

func TestRegisterHandler_MissingFields(t *testing.T) {
	env := newTestEnv(t)
	c, rec := testutil.NewEchoContext(env.echo, http.MethodPost, "/register", strings.NewReader(`{"email":"alice@example.com"}`))

	require.NoError(t, env.handlers.Register(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterHandler_WeakPassword(t *testing.T) {
	env := newTestEnv(t)
	body := `{"email":"alice@example.com","password":"short"}`
	c, rec := testutil.NewEchoContext(env.echo, http.MethodPost, "/register", strings.NewReader(body))

	require.NoError(t, env.handlers.Register(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeBody(t, rec.Body.String())
	assert.NotEmpty(t, resp["details"])
}

func TestRegisterHandler_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	testutil.NewTestUser(t, env.repo, "alice@example.com", "pw")

	body := `{"email":"alice@example.com","password":"correct horse 1"}`
	c, rec := testutil.NewEchoContext(env.echo, http.MethodPost, "/register", strings.NewReader(body))

	require.NoError(t, env.handlers.Register(c))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginHandler_TwoFactorChallenge(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.NewTestUser(t, env.repo, "alice@example.com", "correct horse 1")

	body := `{"email":"alice@example.com","password":"correct horse 1","deviceFingerprint":"fp-1"}`
	c, rec := testutil.NewEchoContext(env.echo, http.MethodPost, "/login", strings.NewReader(body))

	require.NoError(t, env.handlers.Login(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody(t, rec.Body.String())
	assert.Equal(t, true, resp["requires2FA"])
	assert.EqualValues(t, user.ID, resp["userId"])
	assert.Nil(t, resp["token"])
}

func TestLoginHandler_InvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	testutil.NewTestUser(t, env.repo, "alice@example.com", "correct horse 1")

	body := `{"email":"alice@example.com","password":"wrong"}`
	c, rec := testutil.NewEchoContext(env.echo, http.MethodPost, "/login", strings.NewReader(body))

	require.NoError(t, env.handlers.Login(c))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVerifyTwoFactorHandler(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.NewTestUser(t, env.repo, "alice@example.com", "correct horse 1")

	login := `{"email":"alice@example.com","password":"correct horse 1"}`
	c, _ := testutil.NewEchoContext(env.echo, http.MethodPost, "/login", strings.NewReader(login))
	require.NoError(t, env.handlers.Login(c))
	code := env.sender.LastCode(models.PurposeTwoFactorLogin)
	require.NotEmpty(t, code)

	verify := fmt.Sprintf(`{"userId":%d,"code":%q,"trustDevice":true,"deviceFingerprint":"fp-1"}`, user.ID, code)
	c, rec := testutil.NewEchoContext(env.echo, http.MethodPost, "/verify-2fa", strings.NewReader(verify))

	require.NoError(t, env.handlers.VerifyTwoFactor(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody(t, rec.Body.String())
	assert.NotEmpty(t, resp["token"])
	userObj, ok := resp["user"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, user.ID, userObj["id"])
	// The hash never leaves the service boundary.
	assert.NotContains(t, rec.Body.String(), "password")

	// The trusted fingerprint was persisted.
	_, err := env.repo.GetTrustedDevice(c.Request().Context(), user.ID, "fp-1")
	assert.NoError(t, err)
}

func TestVerifyTwoFactorHandler_WrongCode(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.NewTestUser(t, env.repo, "alice@example.com", "correct horse 1")

	body := fmt.Sprintf(`{"userId":%d,"code":"000000"}`, user.ID)
	c, rec := testutil.NewEchoContext(env.echo, http.MethodPost, "/verify-2fa", strings.NewReader(body))

	require.NoError(t, env.handlers.VerifyTwoFactor(c))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVerifyEmailHandler(t *testing.T) {
	env := newTestEnv(t)

	register := `{"email":"alice@example.com","password":"correct horse 1"}`
	c, rec := testutil.NewEchoContext(env.echo, http.MethodPost, "/register", strings.NewReader(register))
	require.NoError(t, env.handlers.Register(c))
	userID := decodeBody(t, rec.Body.String())["userId"]
	code := env.sender.LastCode(models.PurposeEmailVerification)

	verify := fmt.Sprintf(`{"userId":%v,"code":%q}`, userID, code)
	c, rec = testutil.NewEchoContext(env.echo, http.MethodPost, "/verify-email", strings.NewReader(verify))

	require.NoError(t, env.handlers.VerifyEmail(c))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestPasswordResetHandler_UnknownEmailStillOK(t *testing.T) {
	env := newTestEnv(t)

	body := `{"email":"nobody@example.com"}`
	c, rec := testutil.NewEchoContext(env.echo, http.MethodPost, "/request-password-reset", strings.NewReader(body))

	require.NoError(t, env.handlers.RequestPasswordReset(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, env.sender.Sent())
}

func TestResetPasswordHandler(t *testing.T) {
	env := newTestEnv(t)
	testutil.NewTestUser(t, env.repo, "alice@example.com", "correct horse 1")

	c, _ := testutil.NewEchoContext(env.echo, http.MethodPost, "/request-password-reset", strings.NewReader(`{"email":"alice@example.com"}`))
	require.NoError(t, env.handlers.RequestPasswordReset(c))
	code := env.sender.LastCode(models.PurposePasswordReset)
	require.NotEmpty(t, code)

	body := fmt.Sprintf(`{"email":"alice@example.com","code":%q,"newPassword":"brand new pass 2"}`, code)
	c, rec := testutil.NewEchoContext(env.echo, http.MethodPost, "/reset-password", strings.NewReader(body))

	require.NoError(t, env.handlers.ResetPassword(c))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestResetPasswordHandler_InvalidCode(t *testing.T) {
	env := newTestEnv(t)
	testutil.NewTestUser(t, env.repo, "alice@example.com", "correct horse 1")

	body := `{"email":"alice@example.com","code":"000000","newPassword":"brand new pass 2"}`
	c, rec := testutil.NewEchoContext(env.echo, http.MethodPost, "/reset-password", strings.NewReader(body))

	require.NoError(t, env.handlers.ResetPassword(c))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestResendVerificationHandler(t *testing.T) {
	env := newTestEnv(t)
	testutil.NewTestUser(t, env.repo, "alice@example.com", "correct horse 1")

	body := `{"email":"alice@example.com"}`
	c, rec := testutil.NewEchoContext(env.echo, http.MethodPost, "/resend-verification", strings.NewReader(body))

	require.NoError(t, env.handlers.ResendVerification(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, env.sender.LastCode(models.PurposeEmailVerification))
}
