package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
	"txpipeline/lib/testutil"

	"github.com/stretchr/testify/require"
)

func setupStore(t testing.TB) *Store {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "ledger",
		DbSchema: Schema,
	})
	t.Cleanup(cleanup)
	return NewStore(res.DB)
}

func TestBeginFinish(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	clock := time.UnixMilli(1_700_000_000_000)
	store.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	ok, err := store.Begin(ctx, "local")
	require.NoError(t, err)
	require.Len(t, ok.ID, 12)
	require.Equal(t, StatusRunning, ok.Status)
	_, err = store.Finish(ctx, ok, 50, 50000, nil)
	require.NoError(t, err)

	failed, err := store.Begin(ctx, "pg")
	require.NoError(t, err)
	require.NotEqual(t, ok.ID, failed.ID)
	_, err = store.Finish(ctx, failed, 0, 0, errors.New("connection refused"))
	require.NoError(t, err)

	running, err := store.Begin(ctx, "s3")
	require.NoError(t, err)

	records, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 3)

	require.Equal(t, running.ID, records[0].ID)
	require.Equal(t, StatusRunning, records[0].Status)
	require.True(t, records[0].FinishedAt.IsZero())

	require.Equal(t, failed.ID, records[1].ID)
	require.Equal(t, StatusFailed, records[1].Status)
	require.Equal(t, "connection refused", records[1].Error)

	require.Equal(t, ok.ID, records[2].ID)
	require.Equal(t, StatusSuccess, records[2].Status)
	require.Equal(t, "local", records[2].OutputType)
	require.Equal(t, 50, records[2].Pages)
	require.Equal(t, 50000, records[2].Rows)
	require.Equal(t, time.Second, records[2].FinishedAt.Sub(records[2].StartedAt))

	limited, err := store.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
}

func TestOpenFile(t *testing.T) {
	cfg := Config{File: filepath.Join(t.TempDir(), "state", "ledger.db")}
	require.True(t, cfg.Enabled())

	store, err := Open(cfg)
	require.NoError(t, err)
	rec, err := store.Begin(context.Background(), "local")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// the schema is applied again on an existing database
	store, err = Open(cfg)
	require.NoError(t, err)
	defer store.Close()
	records, err := store.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, rec.ID, records[0].ID)
}

func TestDisabled(t *testing.T) {
	require.False(t, Config{}.Enabled())
	_, err := Open(Config{})
	require.Error(t, err)
}
