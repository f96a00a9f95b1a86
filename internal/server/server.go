package server

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"pdf-rag/internal/config"
	"pdf-rag/internal/rag"
)

const (
	allowedContentType = "application/pdf"
	maxFileSize        = 10 * 1024 * 1024

	// apologyText replaces the answer whenever the pipeline fails in the
	// webhook flow, so the bot platform never sees a hard failure.
	apologyText = "Sorry, something went wrong while answering your question. Please try again later."
)

// Answerer runs the answer pipeline for one question.
type Answerer interface {
	Answer(ctx context.Context, question string) (rag.State, error)
}

// Ingester turns one uploaded document into indexed chunks.
type Ingester interface {
	IngestFile(ctx context.Context, path string) (int, error)
}

// Notifier delivers chat-bot replies. May be nil when the bot variant is
// not configured.
type Notifier interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

type Server struct {
	app      *fiber.App
	cfg      *config.Config
	pipeline Answerer
	ingestor Ingester
	notifier Notifier
}

func New(cfg *config.Config, pipeline Answerer, ingestor Ingester, notifier Notifier) *Server {
	app := fiber.New(fiber.Config{
		// Slack over the file cap covers multipart framing; the handler
		// still enforces the exact 10MB limit per file.
		BodyLimit:    maxFileSize + 1024*1024,
		ErrorHandler: errorHandler,
	})

	s := &Server{
		app:      app,
		cfg:      cfg,
		pipeline: pipeline,
		ingestor: ingestor,
		notifier: notifier,
	}
	s.registerRoutes()
	return s
}

func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Info().Str("port", s.cfg.Server.Port).Msg("server listening")
	return s.app.Listen(":" + s.cfg.Server.Port)
}

func (s *Server) registerRoutes() {
	s.app.Get("/hello", s.Hello)
	s.app.Get("/health", s.Hello)
	s.app.Post("/chat", s.Chat)
	s.app.Post("/upload", s.Upload)
	s.app.Post("/telegram-webhook", s.TelegramWebhook)
}

// errorHandler maps errors to {"detail": ...} bodies the way the handlers
// raise them.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	detail := "Internal Server Error"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		detail = fiberErr.Message
	}
	return c.Status(code).JSON(fiber.Map{"detail": detail})
}
