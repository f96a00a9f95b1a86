package index

import (
	"context"

	"pdf-rag/internal/models"
)

// Entry is a chunk plus its embedding as handed to the index. The index
// owns the entry once Insert returns.
type Entry struct {
	ID        string
	Chunk     models.Chunk
	Embedding []float32
}

// Store is a persistent similarity index over chunk embeddings. It must
// tolerate concurrent readers and writers; consistency during
// ingestion-while-querying is the backend's concern.
type Store interface {
	Insert(ctx context.Context, entries []Entry) error
	Search(ctx context.Context, embedding []float32, topK int) ([]models.SearchResult, error)
}
