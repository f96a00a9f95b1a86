package chromemdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf-rag/internal/index"
	"pdf-rag/internal/models"
)

func entry(id, text string, page, start int, vec []float32) index.Entry {
	return index.Entry{
		ID: id,
		Chunk: models.Chunk{
			Text:           text,
			StartIndex:     start,
			SourceFilename: "manual.pdf",
			PageNumber:     page,
		},
		Embedding: vec,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	store, err := NewStore("", "documents")
	require.NoError(t, err)

	err = store.Insert(context.Background(), []index.Entry{
		entry("a", "X is a widget.", 1, 0, []float32{1, 0, 0}),
		entry("b", "Y is a gadget.", 2, 800, []float32{0, 1, 0}),
		entry("c", "Z is a gizmo.", 3, 0, []float32{0, 0, 1}),
	})
	require.NoError(t, err)

	results, err := store.Search(context.Background(), []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "X is a widget.", results[0].Chunk.Text)
	assert.Equal(t, "manual.pdf", results[0].Chunk.SourceFilename)
	assert.Equal(t, 1, results[0].Chunk.PageNumber)
	assert.Equal(t, 0, results[0].Chunk.StartIndex)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
}

func TestSearchEmptyCollection(t *testing.T) {
	store, err := NewStore("", "empty")
	require.NoError(t, err)

	results, err := store.Search(context.Background(), []float32{1, 0, 0}, 4)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchClampsTopKToCount(t *testing.T) {
	store, err := NewStore("", "small")
	require.NoError(t, err)

	require.NoError(t, store.Insert(context.Background(), []index.Entry{
		entry("only", "lone chunk", 1, 0, []float32{1, 0, 0}),
	}))

	results, err := store.Search(context.Background(), []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestInsertNothing(t *testing.T) {
	store, err := NewStore("", "noop")
	require.NoError(t, err)
	assert.NoError(t, store.Insert(context.Background(), nil))
}

func TestPersistentStore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, "documents")
	require.NoError(t, err)

	require.NoError(t, store.Insert(context.Background(), []index.Entry{
		entry("p", "persisted chunk", 1, 0, []float32{1, 0, 0}),
	}))

	reopened, err := NewStore(dir, "documents")
	require.NoError(t, err)
	results, err := reopened.Search(context.Background(), []float32{1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "persisted chunk", results[0].Chunk.Text)
}
