// Copyright 2025 Sellerdesk GmbH
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/sellerdesk/authcore/internal/models"
	"github.com/sellerdesk/authcore/internal/repository"
	"github.com/sellerdesk/authcore/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOneTimeCode(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "alice@example.com", "pw")

	code := &models.OneTimeCode{
		UserID:    user.ID,
		Code:      "123456",
		Purpose:   models.PurposeEmailVerification,
		ExpiresAt: time.Now().UTC().Add(15 * time.Minute),
	}
	err := repo.CreateOneTimeCode(ctx, code)

	require.NoError(t, err)
	assert.NotZero(t, code.ID)
}

func TestLatestUnusedCode_PrefersNewest(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "alice@example.com", "pw")
	expires := time.Now().UTC().Add(15 * time.Minute)

	first := &models.OneTimeCode{UserID: user.ID, Code: "111111", Purpose: models.PurposeTwoFactorLogin, ExpiresAt: expires}
	require.NoError(t, repo.CreateOneTimeCode(ctx, first))
	second := &models.OneTimeCode{UserID: user.ID, Code: "222222", Purpose: models.PurposeTwoFactorLogin, ExpiresAt: expires}
	require.NoError(t, repo.CreateOneTimeCode(ctx, second))

	latest, err := repo.LatestUnusedCode(ctx, user.ID, models.PurposeTwoFactorLogin)

	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
	assert.Equal(t, "222222", latest.Code)
}

func TestLatestUnusedCode_ScopedToPurpose(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "alice@example.com", "pw")
	expires := time.Now().UTC().Add(15 * time.Minute)

	reset := &models.OneTimeCode{UserID: user.ID, Code: "111111", Purpose: models.PurposePasswordReset, ExpiresAt: expires}
	require.NoError(t, repo.CreateOneTimeCode(ctx, reset))

	_, err := repo.LatestUnusedCode(ctx, user.ID, models.PurposeTwoFactorLogin)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	latest, err := repo.LatestUnusedCode(ctx, user.ID, models.PurposePasswordReset)
	require.NoError(t, err)
	assert.Equal(t, reset.ID, latest.ID)
}

func TestMarkCodeUsed(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "alice@example.com", "pw")
	code := &models.OneTimeCode{UserID: user.ID, Code: "123456", Purpose: models.PurposeTwoFactorLogin, ExpiresAt: time.Now().UTC().Add(10 * time.Minute)}
	require.NoError(t, repo.CreateOneTimeCode(ctx, code))

	err := repo.MarkCodeUsed(ctx, code.ID, time.Now().UTC())
	require.NoError(t, err)

	_, err = repo.LatestUnusedCode(ctx, user.ID, models.PurposeTwoFactorLogin)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMarkCodeUsed_AlreadyUsed(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "alice@example.com", "pw")
	code := &models.OneTimeCode{UserID: user.ID, Code: "123456", Purpose: models.PurposeTwoFactorLogin, ExpiresAt: time.Now().UTC().Add(10 * time.Minute)}
	require.NoError(t, repo.CreateOneTimeCode(ctx, code))
	require.NoError(t, repo.MarkCodeUsed(ctx, code.ID, time.Now().UTC()))

	err := repo.MarkCodeUsed(ctx, code.ID, time.Now().UTC())

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCountUnusedCodes(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "alice@example.com", "pw")
	expires := time.Now().UTC().Add(10 * time.Minute)
	for _, c := range []string{"111111", "222222", "333333"} {
		require.NoError(t, repo.CreateOneTimeCode(ctx, &models.OneTimeCode{
			UserID: user.ID, Code: c, Purpose: models.PurposeTwoFactorLogin, ExpiresAt: expires,
		}))
	}

	count, err := repo.CountUnusedCodes(ctx, user.ID, models.PurposeTwoFactorLogin)

	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}
