package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vsinha/fcrecon/pkg/domain/entities"
	"github.com/vsinha/fcrecon/pkg/domain/repositories"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("FCRECON_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("FCRECON_TEST_POSTGRES_DSN not set")
	}
	store, err := Open(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpen_EmptyDSN(t *testing.T) {
	_, err := Open(context.Background(), "")
	assert.Error(t, err)
}

func TestStore_Datasets(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	key := "test-" + uuid.NewString()

	_, ok, err := store.GetDataset(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.PutDataset(ctx, key, repositories.DatasetMapping, []byte("v1")))
	require.NoError(t, store.PutDataset(ctx, key, repositories.DatasetMapping, []byte("v2")))

	payload, ok, err := store.GetDataset(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", string(payload))
}

func TestStore_Runs(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	run := &entities.RunRecord{
		ID:        uuid.NewString(),
		StartedAt: time.Now().Add(24 * time.Hour).UTC(),
		Status:    entities.RunSucceeded,
	}
	require.NoError(t, store.SaveRun(ctx, run))

	runs, err := store.ListRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
}
