package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf-rag/internal/index"
	"pdf-rag/internal/models"
	"pdf-rag/internal/splitter"
)

// testEmbedder implements embeddings.Embedder deterministically.
type testEmbedder struct {
	calls       int
	shouldError bool
}

func (m *testEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	m.calls++
	if m.shouldError {
		return nil, errors.New("embedder error")
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{float32(i), 0.5}
	}
	return vectors, nil
}

func (m *testEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	m.calls++
	if m.shouldError {
		return nil, errors.New("embedder error")
	}
	return []float32{0.1, 0.2}, nil
}

// testStore records inserted batches.
type testStore struct {
	batches [][]index.Entry
	failOn  int // 1-based batch number to fail on, 0 = never
}

func (m *testStore) Insert(ctx context.Context, entries []index.Entry) error {
	m.batches = append(m.batches, entries)
	if m.failOn > 0 && len(m.batches) == m.failOn {
		return errors.New("insert error")
	}
	return nil
}

func (m *testStore) Search(ctx context.Context, embedding []float32, topK int) ([]models.SearchResult, error) {
	return nil, nil
}

func writeTxt(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestIngestFileIndexesAllChunks(t *testing.T) {
	embedder := &testEmbedder{}
	store := &testStore{}
	in := New(embedder, store, splitter.New(100, 20), 500)

	text := strings.Repeat("alpha beta gamma delta epsilon ", 40)
	count, err := in.IngestFile(context.Background(), writeTxt(t, text))
	require.NoError(t, err)
	assert.Greater(t, count, 1)

	total := 0
	for _, b := range store.batches {
		total += len(b)
	}
	assert.Equal(t, count, total)

	for _, b := range store.batches {
		for _, e := range b {
			assert.NotEmpty(t, e.ID)
			assert.Equal(t, "doc.txt", e.Chunk.SourceFilename)
			assert.Equal(t, 1, e.Chunk.PageNumber)
			assert.Len(t, e.Embedding, 2)
		}
	}
}

func TestIngestFileBatchesInserts(t *testing.T) {
	embedder := &testEmbedder{}
	store := &testStore{}
	in := New(embedder, store, splitter.New(100, 20), 3)

	text := strings.Repeat("one two three four five six seven eight nine ten ", 60)
	count, err := in.IngestFile(context.Background(), writeTxt(t, text))
	require.NoError(t, err)
	require.Greater(t, count, 3)

	assert.Greater(t, len(store.batches), 1)
	for i, b := range store.batches {
		if i < len(store.batches)-1 {
			assert.Len(t, b, 3)
		} else {
			assert.LessOrEqual(t, len(b), 3)
		}
	}
}

func TestIngestFileEmbedderFailureAborts(t *testing.T) {
	embedder := &testEmbedder{shouldError: true}
	store := &testStore{}
	in := New(embedder, store, splitter.New(100, 20), 500)

	_, err := in.IngestFile(context.Background(), writeTxt(t, "some document text"))
	require.Error(t, err)
	assert.Empty(t, store.batches, "no inserts after embedding failure")
}

func TestIngestFileInsertFailureKeepsEarlierBatches(t *testing.T) {
	embedder := &testEmbedder{}
	store := &testStore{failOn: 2}
	in := New(embedder, store, splitter.New(100, 20), 2)

	text := strings.Repeat("red orange yellow green blue indigo violet ", 50)
	_, err := in.IngestFile(context.Background(), writeTxt(t, text))
	require.Error(t, err)
	// first batch was submitted and stays submitted
	assert.Len(t, store.batches, 2)
}

func TestIngestFileUnparsableDocument(t *testing.T) {
	embedder := &testEmbedder{}
	store := &testStore{}
	in := New(embedder, store, splitter.New(100, 20), 500)

	_, err := in.IngestFile(context.Background(), "nope.xyz")
	require.Error(t, err)
	assert.Equal(t, 0, embedder.calls, "no embedding work for unparsable input")
}
