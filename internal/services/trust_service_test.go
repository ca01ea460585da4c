package services

import (
	"context"
	"testing"

	"github.com/MarcBaumholz/habit-toolbox/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrustUser(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")
	svc := NewTrustService(repository.NewTrustRepository(db), repository.NewUserRepository(db))

	require.NoError(t, svc.TrustUser(context.Background(), alice.ID, bob.ID))
	// Trusting twice is a no-op.
	require.NoError(t, svc.TrustUser(context.Background(), alice.ID, bob.ID))

	trusted, err := svc.ListTrusted(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{bob.ID}, trusted)

	// The relation is directed.
	trusted, err = svc.ListTrusted(context.Background(), bob.ID)
	require.NoError(t, err)
	assert.Empty(t, trusted)
}

func TestTrustUser_Rejections(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice@example.com")
	svc := NewTrustService(repository.NewTrustRepository(db), repository.NewUserRepository(db))

	err := svc.TrustUser(context.Background(), alice.ID, alice.ID)
	assert.Error(t, err)

	err = svc.TrustUser(context.Background(), alice.ID, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUntrustUser(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")
	svc := NewTrustService(repository.NewTrustRepository(db), repository.NewUserRepository(db))

	require.NoError(t, svc.TrustUser(context.Background(), alice.ID, bob.ID))
	require.NoError(t, svc.UntrustUser(context.Background(), alice.ID, bob.ID))

	trusted, err := svc.ListTrusted(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Empty(t, trusted)

	// Removing a missing relation is a no-op.
	require.NoError(t, svc.UntrustUser(context.Background(), alice.ID, bob.ID))
}
