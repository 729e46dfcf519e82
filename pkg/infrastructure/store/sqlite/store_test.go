package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vsinha/fcrecon/pkg/domain/entities"
	"github.com/vsinha/fcrecon/pkg/domain/repositories"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "state", "fcrecon.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_Datasets(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, ok, err := store.GetDataset(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.PutDataset(ctx, "k", repositories.DatasetMerged, []byte("v1")))
	require.NoError(t, store.PutDataset(ctx, "k", repositories.DatasetMerged, []byte("v2")))

	payload, ok, err := store.GetDataset(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v2"), payload)
}

func TestStore_Runs(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 4, 6, 0, 0, 0, time.UTC)

	for i, id := range []string{"r1", "r2", "r3"} {
		run := &entities.RunRecord{
			ID:         id,
			StartedAt:  base.Add(time.Duration(i) * time.Hour),
			FinishedAt: base.Add(time.Duration(i)*time.Hour + time.Minute),
			Status:     entities.RunSucceeded,
			MergedRows: i,
		}
		require.NoError(t, store.SaveRun(ctx, run))
	}

	failed := &entities.RunRecord{
		ID:        "r2",
		StartedAt: base.Add(time.Hour),
		Status:    entities.RunFailed,
		Error:     "mapping unavailable",
		Issues:    []entities.ExtractIssue{{Extract: "a.xlsx", Kind: entities.IssueMissingColumn, Message: "x"}},
	}
	require.NoError(t, store.SaveRun(ctx, failed))

	runs, err := store.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "r3", runs[0].ID)
	assert.Equal(t, "r2", runs[1].ID)
	assert.Equal(t, entities.RunFailed, runs[1].Status)
	assert.Len(t, runs[1].Issues, 1)
	assert.True(t, runs[0].StartedAt.Equal(base.Add(2*time.Hour)))

	all, err := store.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fcrecon.db")
	ctx := context.Background()

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.PutDataset(ctx, "k", repositories.DatasetForecast, []byte("kept")))
	require.NoError(t, store.Close())

	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()

	payload, ok, err := store.GetDataset(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "kept", string(payload))
}
