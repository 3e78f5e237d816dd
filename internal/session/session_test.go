package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llmspell/llmspell/internal/session"
	"github.com/llmspell/llmspell/internal/storage/memory"
	"github.com/llmspell/llmspell/internal/types"
)

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	mgr := session.NewManager(memory.New().KV(), nil, nil)

	s, err := mgr.Create(ctx, "my session")
	require.NoError(t, err)
	assert.Equal(t, types.SessionActive, s.State)

	got, err := mgr.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
}

func TestTransitionRejectsInvalidEdge(t *testing.T) {
	ctx := context.Background()
	mgr := session.NewManager(memory.New().KV(), nil, nil)
	s, err := mgr.Create(ctx, "t")
	require.NoError(t, err)

	_, err = mgr.Transition(ctx, s.ID, types.SessionCompleted)
	require.NoError(t, err)

	_, err = mgr.Transition(ctx, s.ID, types.SessionActive)
	assert.Error(t, err)
}

func TestArtifactDedupByHash(t *testing.T) {
	ctx := context.Background()
	store, err := session.NewArtifactStore(memory.New().KV())
	require.NoError(t, err)

	a, err := store.Put(ctx, "sess1", "out.txt", "text/plain", []byte("hello"), nil)
	require.NoError(t, err)
	b, err := store.Put(ctx, "sess1", "out-copy.txt", "text/plain", []byte("hello"), nil)
	require.NoError(t, err)

	assert.Equal(t, a.ContentHash, b.ContentHash)
	assert.NotEqual(t, a.ID.Sequence, b.ID.Sequence)
	assert.NotEqual(t, a.ID, b.ID)

	data, _, err := store.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
}

func TestArtifactRoundTripWithCompression(t *testing.T) {
	ctx := context.Background()
	store, err := session.NewArtifactStore(memory.New().KV())
	require.NoError(t, err)

	big := make([]byte, session.CompressionThreshold+100)
	for i := range big {
		big[i] = byte(i % 7)
	}

	meta, err := store.Put(ctx, "sess1", "big.bin", "application/octet-stream", big, nil)
	require.NoError(t, err)
	assert.True(t, meta.Compressed)

	data, gotMeta, err := store.Get(ctx, meta.ID)
	require.NoError(t, err)
	assert.Equal(t, big, data)
	assert.Equal(t, meta.ContentHash, gotMeta.ContentHash)
}

func TestReaperArchivesAndDeletesExpiredSessions(t *testing.T) {
	ctx := context.Background()
	kv := memory.New().KV()
	mgr := session.NewManager(kv, nil, nil)
	store, err := session.NewArtifactStore(kv)
	require.NoError(t, err)

	s, err := mgr.Create(ctx, "old")
	require.NoError(t, err)
	_, err = mgr.Transition(ctx, s.ID, types.SessionCompleted)
	require.NoError(t, err)

	dir := t.TempDir()
	reaper := session.NewReaper(mgr, store, session.RetentionPolicy{MaxAge: -time.Hour, ArchiveDir: dir}, nil)
	require.NoError(t, reaper.Sweep(ctx))

	_, err = mgr.Get(ctx, s.ID)
	assert.Error(t, err)
}
