package server

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"pdf-rag/internal/helper"
	"pdf-rag/internal/telegram"
)

type chatInput struct {
	Question string `json:"question"`
}

func (s *Server) Hello(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Hello World",
		"time":    time.Now().Format("2006-01-02 03:04:05 PM"),
	})
}

func (s *Server) Chat(c *fiber.Ctx) error {
	var input chatInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body.")
	}
	if input.Question == "" {
		return fiber.NewError(fiber.StatusBadRequest, "No user input.")
	}

	ctx, cancel := s.answerContext(c)
	defer cancel()

	state, err := s.pipeline.Answer(ctx, input.Question)
	if err != nil {
		log.Error().Err(err).Str("question", input.Question).Msg("answer pipeline failed")
		return fiber.NewError(fiber.StatusInternalServerError, "Error answering question.")
	}
	return c.JSON(state.Answer)
}

func (s *Server) Upload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "No file provided.")
	}

	if ct := file.Header.Get("Content-Type"); ct != allowedContentType {
		return fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("Invalid file type: %s. Only PDF is allowed.", ct))
	}
	if file.Size > maxFileSize {
		return fiber.NewError(fiber.StatusBadRequest, "File size exceeds the 10MB limit.")
	}

	if err := helper.CreateFolder(s.cfg.Server.UploadDir); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Error preparing upload directory.")
	}
	path := filepath.Join(s.cfg.Server.UploadDir, filepath.Base(file.Filename))
	if err := c.SaveFile(file, path); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Error saving uploaded file.")
	}
	// The transient upload is removed on every exit path.
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", path).Msg("failed to remove uploaded file")
		}
	}()

	ctx, cancel := context.WithTimeout(c.UserContext(), s.cfg.RAG.IngestTimeout())
	defer cancel()

	count, err := s.ingestor.IngestFile(ctx, path)
	if err != nil {
		log.Error().Err(err).Str("file", file.Filename).Msg("ingestion failed")
		return fiber.NewError(fiber.StatusInternalServerError,
			fmt.Sprintf("Error processing PDF: %s", err))
	}

	log.Info().Str("file", file.Filename).Int("chunks", count).Msg("pdf processed")
	return c.JSON(fiber.Map{"message": "PDF processed successfully"})
}

func (s *Server) TelegramWebhook(c *fiber.Ctx) error {
	var update telegram.Update
	if err := c.BodyParser(&update); err != nil {
		return c.JSON(fiber.Map{"status": "ignored"})
	}
	if update.Message == nil || update.Message.Text == "" || update.Message.Chat.ID == 0 {
		return c.JSON(fiber.Map{"status": "ignored"})
	}

	ctx, cancel := s.answerContext(c)
	defer cancel()

	answer := apologyText
	state, err := s.pipeline.Answer(ctx, update.Message.Text)
	if err != nil {
		// Failure isolation: the platform gets the apology, not the error.
		log.Error().Err(err).Int64("chat_id", update.Message.Chat.ID).Msg("webhook pipeline failed")
	} else {
		answer = state.Answer
	}

	if s.notifier != nil {
		if err := s.notifier.SendMessage(ctx, update.Message.Chat.ID, answer); err != nil {
			log.Error().Err(err).Int64("chat_id", update.Message.Chat.ID).Msg("failed to send telegram reply")
		}
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// answerContext bounds the whole retrieve+generate sequence; each step's
// provider call finishes inside this window or the request fails.
func (s *Server) answerContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	timeout := s.cfg.RAG.EmbedTimeout() + s.cfg.RAG.GenerateTimeout()
	return context.WithTimeout(c.UserContext(), timeout)
}
