package store

import (
	"context"
	"errors"
	"testing"

	"qa/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memKV is an in-memory KVStorer. failAt > 0 makes the failAt-th write
// fail, simulating an interrupted persist.
type memKV struct {
	data   map[string][]byte
	writes int
	failAt int
}

func newMemKV() *memKV {
	return &memKV{data: map[string][]byte{}}
}

func (m *memKV) Write(key string, value []byte) error {
	m.writes++
	if m.failAt > 0 && m.writes >= m.failAt {
		return errors.New("backend write failure")
	}
	m.data[key] = value
	return nil
}

func (m *memKV) Read(key string) ([]byte, error) {
	value, ok := m.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return value, nil
}

func (m *memKV) Close() error { return nil }

func testKnowledge() (types.Knowledge, [][]float32) {
	knowledge := types.Knowledge{
		FileName: "manual.pdf",
		Uploader: "alice",
		Chunks: []types.Chunk{
			{Content: "first chunk\n", Page: 1},
			{Content: "second chunk\n", Page: 2},
			{Content: "third chunk\n", Page: 4},
		},
	}
	vectors := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
	return knowledge, vectors
}

func TestPersistLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	storage := New(newMemKV())
	knowledge, vectors := testKnowledge()

	id, err := storage.Persist(ctx, knowledge, vectors)
	require.NoError(t, err)
	assert.Equal(t, 0, id)

	loaded, err := storage.Load(ctx, id, []int{0, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, knowledge, loaded)

	rebuilt, err := storage.RebuildVectors(ctx)
	require.NoError(t, err)
	assert.Equal(t, vectors, rebuilt[id])

	names, err := storage.RebuildNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"manual.pdf"}, names)
}

func TestPersistAssignsMonotonicIDs(t *testing.T) {
	ctx := context.Background()
	storage := New(newMemKV())
	knowledge, vectors := testKnowledge()

	for want := 0; want < 3; want++ {
		id, err := storage.Persist(ctx, knowledge, vectors)
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}
	count, err := storage.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestPersistRejectsMismatchBeforeWriting(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	storage := New(kv)
	knowledge, vectors := testKnowledge()

	_, err := storage.Persist(ctx, knowledge, vectors[:2])
	require.ErrorIs(t, err, ErrChunkMismatch)
	assert.Empty(t, kv.data, "a validation failure must not mutate the store")
}

func TestInterruptedPersistStaysUnpublished(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	storage := New(kv)
	knowledge, vectors := testKnowledge()

	// Writes per document: name, uploader, chunk count, then three chunk
	// triples, then the count advance. Failing the last write leaves all
	// chunk data on disk but never publishes the document.
	kv.failAt = 3 + 3*3 + 1
	_, err := storage.Persist(ctx, knowledge, vectors)
	require.Error(t, err)

	count, err := storage.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	rebuilt, err := storage.RebuildVectors(ctx)
	require.NoError(t, err)
	assert.Empty(t, rebuilt)

	names, err := storage.RebuildNames(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestLoadHonorsCallerIndexOrder(t *testing.T) {
	ctx := context.Background()
	storage := New(newMemKV())
	knowledge, vectors := testKnowledge()

	id, err := storage.Persist(ctx, knowledge, vectors)
	require.NoError(t, err)

	loaded, err := storage.Load(ctx, id, []int{2, 0, 2})
	require.NoError(t, err)
	require.Len(t, loaded.Chunks, 3)
	assert.Equal(t, knowledge.Chunks[2], loaded.Chunks[0])
	assert.Equal(t, knowledge.Chunks[0], loaded.Chunks[1])
	assert.Equal(t, knowledge.Chunks[2], loaded.Chunks[2])
}

func TestLoadRejectsOutOfRangeIndex(t *testing.T) {
	ctx := context.Background()
	storage := New(newMemKV())
	knowledge, vectors := testKnowledge()

	id, err := storage.Persist(ctx, knowledge, vectors)
	require.NoError(t, err)

	_, err = storage.Load(ctx, id, []int{3})
	assert.Error(t, err)

	_, err = storage.Load(ctx, id, []int{-1})
	assert.Error(t, err)
}

func TestCountDefaultsToZeroOnEmptyStore(t *testing.T) {
	storage := New(newMemKV())

	count, err := storage.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestDecodeStringTolerantOfCorruption(t *testing.T) {
	assert.Equal(t, "ok", decodeString([]byte("ok")))
	assert.Contains(t, decodeString([]byte{'a', 0xff, 'b'}), "a")
}
