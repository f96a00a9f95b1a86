package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"pdf-rag/internal/config"
	"pdf-rag/internal/index"
	"pdf-rag/internal/models"
)

type Document struct {
	bun.BaseModel `bun:"table:documents,alias:d"`

	ID             int64           `bun:"id,pk,autoincrement"`
	Content        string          `bun:"content,notnull"`
	Embedding      pgvector.Vector `bun:"embedding,notnull,type:vector(1536)"`
	SourceFilename string          `bun:"source_filename"`
	PageNumber     int             `bun:"page_number"`
	ChunkStart     int             `bun:"chunk_start"`

	Distance float32 `bun:"distance,scanonly"`
}

// Connect opens the Supabase Postgres connection.
func Connect(cfg *config.SupabaseConfig) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(cfg.URL+"?sslmode=disable"),
		pgdriver.WithPassword(cfg.Key),
	))
	db := bun.NewDB(sqldb, pgdialect.New())
	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

// InitDB creates the documents table if it does not exist.
func InitDB(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*Document)(nil)).IfNotExists().Exec(ctx)
	return err
}

// DropDocuments removes the whole documents table. Administrative use only.
func DropDocuments(ctx context.Context, db *bun.DB) error {
	_, err := db.NewDropTable().Model((*Document)(nil)).IfExists().Exec(ctx)
	return err
}

// Store implements index.Store on Postgres with the pgvector extension.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Insert(ctx context.Context, entries []index.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	docs := make([]Document, len(entries))
	for i, e := range entries {
		docs[i] = Document{
			Content:        e.Chunk.Text,
			Embedding:      pgvector.NewVector(e.Embedding),
			SourceFilename: e.Chunk.SourceFilename,
			PageNumber:     e.Chunk.PageNumber,
			ChunkStart:     e.Chunk.StartIndex,
		}
	}
	if _, err := s.db.NewInsert().Model(&docs).Exec(ctx); err != nil {
		return fmt.Errorf("inserting %d documents: %w", len(docs), err)
	}
	return nil
}

func (s *Store) Search(ctx context.Context, embedding []float32, topK int) ([]models.SearchResult, error) {
	vec := pgvector.NewVector(embedding)

	var docs []Document
	err := s.db.NewSelect().
		Model(&docs).
		ColumnExpr("d.*").
		ColumnExpr("embedding <-> ? AS distance", vec).
		OrderExpr("embedding <-> ?", vec).
		Limit(topK).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("searching documents: %w", err)
	}

	results := make([]models.SearchResult, len(docs))
	for i, d := range docs {
		results[i] = models.SearchResult{
			Chunk: models.Chunk{
				Text:           d.Content,
				StartIndex:     d.ChunkStart,
				SourceFilename: d.SourceFilename,
				PageNumber:     d.PageNumber,
			},
			Score: d.Distance,
		}
	}
	return results, nil
}
