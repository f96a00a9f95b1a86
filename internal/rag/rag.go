package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"

	"pdf-rag/internal/index"
	"pdf-rag/internal/models"
)

// ErrEmptyQuestion is returned when the pipeline is invoked without a
// question. The HTTP boundary rejects this case before it gets here.
var ErrEmptyQuestion = errors.New("question is empty")

// Generator produces an answer from a question and a grounding block.
type Generator interface {
	Generate(ctx context.Context, question, contextBlock string) (string, error)
}

// State threads one question through the pipeline. Question is set at
// creation, Context is written once by retrieve, Answer once by generate.
// A State is owned by the single request that created it.
type State struct {
	Question string
	Context  []models.Chunk
	Answer   string
}

// Pipeline answers questions in two strictly sequential steps: retrieve
// similar chunks from the index, then generate an answer grounded in them.
type Pipeline struct {
	embedder  embeddings.Embedder
	store     index.Store
	generator Generator
	topK      int
}

func NewPipeline(embedder embeddings.Embedder, store index.Store, generator Generator, topK int) *Pipeline {
	if topK <= 0 {
		topK = models.DefaultTopK
	}
	return &Pipeline{embedder: embedder, store: store, generator: generator, topK: topK}
}

// Answer runs retrieve then generate for one question and returns the
// final state.
func (p *Pipeline) Answer(ctx context.Context, question string) (State, error) {
	state := State{Question: question}
	if err := p.retrieve(ctx, &state); err != nil {
		return state, err
	}
	if err := p.generate(ctx, &state); err != nil {
		return state, err
	}
	return state, nil
}

func (p *Pipeline) retrieve(ctx context.Context, state *State) error {
	if strings.TrimSpace(state.Question) == "" {
		return ErrEmptyQuestion
	}

	queryEmbedding, err := p.embedder.EmbedQuery(ctx, state.Question)
	if err != nil {
		return fmt.Errorf("embedding question: %w", err)
	}

	results, err := p.store.Search(ctx, queryEmbedding, p.topK)
	if err != nil {
		return fmt.Errorf("searching index: %w", err)
	}

	// Keep the index's ranking order; no re-ranking or filtering.
	chunks := make([]models.Chunk, len(results))
	for i, r := range results {
		chunks[i] = r.Chunk
	}
	state.Context = chunks

	log.Debug().Int("chunks", len(chunks)).Msg("retrieved context")
	return nil
}

func (p *Pipeline) generate(ctx context.Context, state *State) error {
	texts := make([]string, len(state.Context))
	for i, c := range state.Context {
		texts[i] = c.Text
	}
	contextBlock := strings.Join(texts, models.ContextSeparator)

	answer, err := p.generator.Generate(ctx, state.Question, contextBlock)
	if err != nil {
		return fmt.Errorf("generating answer: %w", err)
	}
	state.Answer = answer
	return nil
}
