package ingest

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"

	"pdf-rag/internal/embedding"
	"pdf-rag/internal/helper"
	"pdf-rag/internal/index"
	"pdf-rag/internal/models"
	"pdf-rag/internal/parser"
	"pdf-rag/internal/splitter"
)

// Ingestor turns one uploaded document into indexed chunks. A failure at
// any step aborts the whole ingestion; sub-batches already inserted are
// not rolled back.
type Ingestor struct {
	embedder  embeddings.Embedder
	store     index.Store
	splitter  *splitter.Splitter
	batchSize int
}

func New(embedder embeddings.Embedder, store index.Store, split *splitter.Splitter, batchSize int) *Ingestor {
	if batchSize <= 0 {
		batchSize = models.DefaultInsertBatch
	}
	return &Ingestor{
		embedder:  embedder,
		store:     store,
		splitter:  split,
		batchSize: batchSize,
	}
}

// IngestFile parses, chunks, embeds and indexes the document at path.
// Returns the number of chunks indexed. Removing the file afterwards is
// the caller's responsibility.
func (in *Ingestor) IngestFile(ctx context.Context, path string) (int, error) {
	pages, err := parser.Parse(path)
	if err != nil {
		return 0, fmt.Errorf("parsing document: %w", err)
	}

	var chunks []models.Chunk
	for _, page := range pages {
		for _, c := range in.splitter.Split(page.Text) {
			c.SourceFilename = page.SourceFilename
			c.PageNumber = page.Number
			chunks = append(chunks, c)
		}
	}
	if len(chunks) == 0 {
		log.Info().Str("path", path).Msg("document produced no chunks")
		return 0, nil
	}

	vectors, err := embedding.EmbedChunks(ctx, in.embedder, chunks)
	if err != nil {
		return 0, err
	}

	entries := make([]index.Entry, len(chunks))
	for i, c := range chunks {
		id, err := helper.GenerateUUID()
		if err != nil {
			return 0, err
		}
		entries[i] = index.Entry{ID: id, Chunk: c, Embedding: vectors[i]}
	}

	for start := 0; start < len(entries); start += in.batchSize {
		end := start + in.batchSize
		if end > len(entries) {
			end = len(entries)
		}
		if err := in.store.Insert(ctx, entries[start:end]); err != nil {
			return 0, fmt.Errorf("inserting batch %d-%d: %w", start, end, err)
		}
	}

	log.Info().Str("path", path).Int("pages", len(pages)).Int("chunks", len(chunks)).Msg("document ingested")
	return len(chunks), nil
}
