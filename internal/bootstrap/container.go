package bootstrap

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"

	"pdf-rag/internal/chromemdb"
	"pdf-rag/internal/config"
	"pdf-rag/internal/db"
	"pdf-rag/internal/embedding"
	"pdf-rag/internal/index"
	"pdf-rag/internal/ingest"
	"pdf-rag/internal/llm"
	"pdf-rag/internal/rag"
	"pdf-rag/internal/splitter"
	"pdf-rag/internal/telegram"
)

// Container holds the long-lived service handles: index, embedder,
// generation client, and the two components built on top of them. It is
// constructed once at startup and injected where needed.
type Container struct {
	Store    index.Store
	Embedder embeddings.Embedder
	Client   *llm.Client
	Pipeline *rag.Pipeline
	Ingestor *ingest.Ingestor
	Notifier *telegram.Client
}

func Build(ctx context.Context, cfg *config.Config) (*Container, error) {
	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return nil, err
	}

	client, err := buildGenerator(cfg)
	if err != nil {
		return nil, err
	}

	split := splitter.New(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)

	c := &Container{
		Store:    store,
		Embedder: embedder,
		Client:   client,
		Pipeline: rag.NewPipeline(embedder, store, client, cfg.RAG.TopK),
		Ingestor: ingest.New(embedder, store, split, cfg.RAG.InsertBatchSize),
	}
	if cfg.Telegram.BotToken != "" {
		c.Notifier = telegram.NewClient(&cfg.Telegram)
	}
	return c, nil
}

func buildStore(ctx context.Context, cfg *config.Config) (index.Store, error) {
	switch cfg.Vector.Backend {
	case "postgres":
		bunDB := db.Connect(&cfg.Supabase)
		if err := db.InitDB(ctx, bunDB); err != nil {
			return nil, fmt.Errorf("initializing database: %w", err)
		}
		return db.NewStore(bunDB), nil
	case "chromem":
		return chromemdb.NewStore(cfg.Vector.ChromemDir, cfg.Vector.Collection)
	default:
		return nil, fmt.Errorf("unknown vector backend: %s", cfg.Vector.Backend)
	}
}

func buildEmbedder(cfg *config.Config) (embeddings.Embedder, error) {
	if cfg.Ollama.BaseURL != "" {
		return embedding.NewOllamaEmbedder(&cfg.Ollama)
	}
	return embedding.NewOpenAIEmbedder(&cfg.OpenAI)
}

func buildGenerator(cfg *config.Config) (*llm.Client, error) {
	if cfg.Ollama.BaseURL != "" {
		model, err := ollama.New(
			ollama.WithServerURL(cfg.Ollama.BaseURL),
			ollama.WithModel(cfg.Ollama.InferenceModel),
		)
		if err != nil {
			return nil, fmt.Errorf("initializing ollama model: %w", err)
		}
		return llm.NewClient(model, cfg.RAG.PromptTemplate, cfg.Ollama.Temperature)
	}
	return llm.NewOpenAIClient(&cfg.OpenAI, cfg.RAG.PromptTemplate)
}
