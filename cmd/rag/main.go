package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pdf-rag/internal/bootstrap"
	"pdf-rag/internal/config"
	"pdf-rag/internal/db"
)

const defaultConfigPath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", defaultConfigPath, "Path to the config file")
	filePath := flag.String("file", "", "Path to a document file to ingest")
	query := flag.String("query", "", "Question to answer against the index")
	reset := flag.Bool("reset", false, "Drop the documents table before ingesting (postgres backend only)")
	flag.Parse()

	if *filePath == "" && *query == "" {
		log.Fatal().Msg("Please provide a document with -file or a question with -query")
	}
	if *filePath != "" && *query != "" {
		log.Fatal().Msg("Please provide either -file or -query, but not both")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	ctx := context.Background()

	if *reset && cfg.Vector.Backend == "postgres" {
		bunDB := db.Connect(&cfg.Supabase)
		if err := db.DropDocuments(ctx, bunDB); err != nil {
			log.Fatal().Err(err).Msg("Error dropping documents table")
		}
		bunDB.Close()
	}

	container, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error building service container")
	}

	if *filePath != "" {
		ingestFile(ctx, cfg, container, *filePath)
		return
	}
	askQuestion(ctx, cfg, container, *query)
}

func ingestFile(ctx context.Context, cfg *config.Config, c *bootstrap.Container, path string) {
	ctx, cancel := context.WithTimeout(ctx, cfg.RAG.IngestTimeout())
	defer cancel()

	count, err := c.Ingestor.IngestFile(ctx, path)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("Error ingesting document")
	}
	log.Info().Str("file", path).Int("chunks", count).Msg("Document ingested")
}

func askQuestion(ctx context.Context, cfg *config.Config, c *bootstrap.Container, question string) {
	ctx, cancel := context.WithTimeout(ctx, cfg.RAG.EmbedTimeout()+cfg.RAG.GenerateTimeout())
	defer cancel()

	state, err := c.Pipeline.Answer(ctx, question)
	if err != nil {
		log.Fatal().Err(err).Msg("Error answering question")
	}

	fmt.Printf("Question:\n%s\n\n", state.Question)
	fmt.Printf("Context (%d chunks):\n", len(state.Context))
	for _, chunk := range state.Context {
		fmt.Printf("- %s p.%d (offset %d)\n", chunk.SourceFilename, chunk.PageNumber, chunk.StartIndex)
	}
	fmt.Printf("\nAnswer:\n%s\n", state.Answer)
}
