package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"pdf-rag/internal/models"
)

// fakeModel implements llms.Model and fails the first failN calls.
type fakeModel struct {
	calls   int
	failN   int
	answer  string
	prompts []string
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.calls++
	for _, m := range messages {
		for _, p := range m.Parts {
			if t, ok := p.(llms.TextContent); ok {
				f.prompts = append(f.prompts, t.Text)
			}
		}
	}
	if f.calls <= f.failN {
		return nil, errors.New("provider unavailable")
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: f.answer}},
	}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return f.answer, nil
}

func TestGenerateComposesPrompt(t *testing.T) {
	model := &fakeModel{answer: "grounded answer"}
	client, err := NewClient(model, models.AnswerPromptTemplate, 0.7)
	require.NoError(t, err)

	answer, err := client.Generate(context.Background(), "What is X?", "X is a thing.")
	require.NoError(t, err)
	assert.Equal(t, "grounded answer", answer)

	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], "X is a thing.")
	assert.Contains(t, model.prompts[0], "Question: What is X?")
}

func TestGenerateEmptyContextStillCallsModel(t *testing.T) {
	model := &fakeModel{answer: "I don't know."}
	client, err := NewClient(model, models.AnswerPromptTemplate, 0)
	require.NoError(t, err)

	answer, err := client.Generate(context.Background(), "What is X?", "")
	require.NoError(t, err)
	assert.Equal(t, "I don't know.", answer)
	assert.Equal(t, 1, model.calls)
}

func TestGenerateRetriesTransientFailures(t *testing.T) {
	model := &fakeModel{failN: 2, answer: "eventually"}
	client, err := NewClient(model, models.AnswerPromptTemplate, 0)
	require.NoError(t, err)

	answer, err := client.Generate(context.Background(), "q", "c")
	require.NoError(t, err)
	assert.Equal(t, "eventually", answer)
	assert.Equal(t, 3, model.calls)
}

func TestGenerateGivesUpAfterTwoRetries(t *testing.T) {
	model := &fakeModel{failN: 10}
	client, err := NewClient(model, models.AnswerPromptTemplate, 0)
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), "q", "c")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "generating answer"))
	assert.Equal(t, 3, model.calls)
}

func TestNewClientRequiresModel(t *testing.T) {
	_, err := NewClient(nil, models.AnswerPromptTemplate, 0)
	assert.Error(t, err)
}
