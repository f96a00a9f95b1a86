package models

const (
	DefaultChunkSize    = 1000 // runes
	DefaultChunkOverlap = 200  // runes
	DefaultTopK         = 4
	DefaultInsertBatch  = 500

	ContextSeparator = "\n\n"
)

// AnswerPromptTemplate grounds the model in retrieved chunks. Placeholders
// are resolved once at startup through langchaingo's prompt templates.
var AnswerPromptTemplate = `You are an assistant for question-answering tasks. Use the following pieces of retrieved context to answer the question. If you don't know the answer, just say that you don't know.

Context:
{{.context}}

Question: {{.question}}

Answer:`
