package models

// Chunk represents a bounded slice of a document page with provenance metadata
type Chunk struct {
	Text           string
	StartIndex     int
	SourceFilename string
	PageNumber     int
}

// SearchResult is a chunk returned from similarity search with its score.
// The score's meaning (distance vs similarity) depends on the index backend.
type SearchResult struct {
	Chunk Chunk
	Score float32
}
