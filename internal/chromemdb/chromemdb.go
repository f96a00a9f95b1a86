package chromemdb

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"github.com/philippgille/chromem-go"

	"pdf-rag/internal/index"
	"pdf-rag/internal/models"
)

const compress = false

// Store implements index.Store on an embedded chromem-go database. Used for
// local runs without Postgres and for integration-style tests.
type Store struct {
	db         *chromem.DB
	collection *chromem.Collection
}

// NewStore opens (or creates) the persistent database at dir. An empty dir
// selects a purely in-memory database.
func NewStore(dir, collectionName string) (*Store, error) {
	var (
		db  *chromem.DB
		err error
	)
	if dir == "" {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(dir, compress)
		if err != nil {
			return nil, fmt.Errorf("opening chromem db: %w", err)
		}
	}

	collection, err := db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("creating collection %q: %w", collectionName, err)
	}
	return &Store{db: db, collection: collection}, nil
}

func (s *Store) Insert(ctx context.Context, entries []index.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	docs := make([]chromem.Document, len(entries))
	for i, e := range entries {
		docs[i] = chromem.Document{
			ID:        e.ID,
			Content:   e.Chunk.Text,
			Embedding: e.Embedding,
			Metadata: map[string]string{
				"source_filename": e.Chunk.SourceFilename,
				"page_number":     strconv.Itoa(e.Chunk.PageNumber),
				"chunk_start":     strconv.Itoa(e.Chunk.StartIndex),
			},
		}
	}
	if err := s.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("adding %d documents: %w", len(docs), err)
	}
	return nil
}

func (s *Store) Search(ctx context.Context, embedding []float32, topK int) ([]models.SearchResult, error) {
	// chromem rejects queries asking for more results than stored documents.
	if count := s.collection.Count(); count < topK {
		topK = count
	}
	if topK == 0 {
		return nil, nil
	}

	found, err := s.collection.QueryEmbedding(ctx, embedding, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying collection: %w", err)
	}

	results := make([]models.SearchResult, len(found))
	for i, r := range found {
		page, _ := strconv.Atoi(r.Metadata["page_number"])
		start, _ := strconv.Atoi(r.Metadata["chunk_start"])
		results[i] = models.SearchResult{
			Chunk: models.Chunk{
				Text:           r.Content,
				StartIndex:     start,
				SourceFilename: r.Metadata["source_filename"],
				PageNumber:     page,
			},
			Score: r.Similarity,
		}
	}
	return results, nil
}
