package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/souqra/internal/adapters/file"
	"github.com/aretw0/souqra/pkg/domain"
	"github.com/aretw0/souqra/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Store implements StateStore
var _ ports.StateStore = (*file.Store)(nil)

func TestFileStore_Contract(t *testing.T) {
	ports.RunStateStoreContract(t, file.New(t.TempDir()))
}

func TestFileStore_Durability(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	state := domain.NewState("durable", domain.Brief{ProductName: "Kettle"})
	state.KeywordStrategy = &domain.KeywordStrategy{KeywordResearch: domain.KeywordResearch{Overview: "tea"}}
	require.NoError(t, file.New(dir).Save(ctx, "durable", state))

	// A fresh store over the same directory sees the session, as after a restart.
	loaded, err := file.New(dir).Load(ctx, "durable")
	require.NoError(t, err)
	assert.Equal(t, "tea", loaded.KeywordStrategy.KeywordResearch.Overview)

	// No temp files are left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, "durable.json", entries[0].Name())
}

func TestFileStore_IgnoresStrayFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tmp-abc-123.json"), []byte("{"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	ids, err := file.New(dir).List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestFileStore_RejectsUnsafeIDs(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()

	for _, id := range []string{"", "..", "../escape", `a\b`, "tmp-x"} {
		t.Run(id, func(t *testing.T) {
			err := store.Save(ctx, id, domain.NewState(id, domain.Brief{ProductName: "x"}))
			assert.ErrorIs(t, err, file.ErrInvalidSessionID)
			_, err = store.Load(ctx, id)
			assert.ErrorIs(t, err, file.ErrInvalidSessionID)
			assert.ErrorIs(t, err, domain.ErrSessionNotFound, "no session can live under an unsafe id")
			assert.ErrorIs(t, store.Delete(ctx, id), domain.ErrSessionNotFound)
		})
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0o644))

	_, err := file.New(dir).Load(context.Background(), "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrSessionNotFound)
}
