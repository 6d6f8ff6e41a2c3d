// Copyright 2025 Sellerdesk GmbH
// Licensed under the EUPL-1.2

package consent_test

import (
	"context"
	"testing"
	"time"

	"github.com/sellerdesk/authcore/internal/models"
	"github.com/sellerdesk/authcore/internal/services/consent"
	"github.com/sellerdesk/authcore/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignThenStatus(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	svc := consent.NewService(repo)

	user := testutil.NewTestUser(t, repo, "alice@example.com", "pw")

	err := svc.Sign(ctx, user.ID, "Alice Example, Musterstr. 1", "203.0.113.7", "2025-01")
	require.NoError(t, err)

	status, err := svc.Status(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, status.Signed)
	assert.Equal(t, "Alice Example, Musterstr. 1", status.SignaturePayload)
	assert.Equal(t, "2025-01", status.ContractVersion)
	require.NotNil(t, status.SignedAt)

	// The user flag is set in the same transaction.
	updated, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, updated.IsConsentSigned)
}

func TestStatus_Unsigned(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	svc := consent.NewService(repo)

	user := testutil.NewTestUser(t, repo, "alice@example.com", "pw")

	status, err := svc.Status(context.Background(), user.ID)

	require.NoError(t, err)
	assert.False(t, status.Signed)
	assert.Nil(t, status.SignedAt)
}

func TestSign_ReplacesPreviousSignature(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	svc := consent.NewService(repo)

	user := testutil.NewTestUser(t, repo, "alice@example.com", "pw")

	require.NoError(t, svc.Sign(ctx, user.ID, "old payload", "203.0.113.7", "2024-06"))
	require.NoError(t, svc.Sign(ctx, user.ID, "new payload", "203.0.113.8", "2025-01"))

	status, err := svc.Status(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new payload", status.SignaturePayload)
	assert.Equal(t, "2025-01", status.ContractVersion)
}

func TestStatus_HealsDriftedFlag(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	svc := consent.NewService(repo)

	user := testutil.NewTestUser(t, repo, "alice@example.com", "pw")

	// A record without the flag models a partial write from a crashed signer.
	require.NoError(t, repo.UpsertConsentRecord(ctx, &models.ConsentRecord{
		UserID:           user.ID,
		SignaturePayload: "Alice Example",
		ContractVersion:  "2025-01",
		SignedAt:         time.Now().UTC().Add(-time.Hour),
	}))
	drifted, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.False(t, drifted.IsConsentSigned)

	status, err := svc.Status(ctx, user.ID)

	require.NoError(t, err)
	assert.True(t, status.Signed)

	healed, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, healed.IsConsentSigned)
}
