package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llmspell/llmspell/internal/errs"
	"github.com/llmspell/llmspell/internal/storage/memory"
)

func TestBackendPutGet(t *testing.T) {
	ctx := context.Background()
	b := memory.New()
	kv := b.KV()

	require.NoError(t, kv.Put(ctx, "ns", "a", []byte("1")))
	v, err := kv.Get(ctx, "ns", "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), v)
}

func TestBackendGetMissingIsNotFound(t *testing.T) {
	ctx := context.Background()
	kv := memory.New().KV()

	_, err := kv.Get(ctx, "ns", "missing")
	require.Error(t, err)
	assert.Equal(t, errs.NotFound, errs.KindOf(err))
}

func TestBackendRangeOrdered(t *testing.T) {
	ctx := context.Background()
	kv := memory.New().KV()

	require.NoError(t, kv.Put(ctx, "ns", "b", []byte("2")))
	require.NoError(t, kv.Put(ctx, "ns", "a", []byte("1")))
	require.NoError(t, kv.Put(ctx, "ns", "c", []byte("3")))

	entries, err := kv.Range(ctx, "ns", "", "", 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{entries[0].Key, entries[1].Key, entries[2].Key})
}

func TestBackendDelete(t *testing.T) {
	ctx := context.Background()
	kv := memory.New().KV()

	require.NoError(t, kv.Put(ctx, "ns", "a", []byte("1")))
	require.NoError(t, kv.Delete(ctx, "ns", "a"))

	_, err := kv.Get(ctx, "ns", "a")
	assert.Error(t, err)
}
