package splitter

import (
	"strings"

	"pdf-rag/internal/models"
)

// Splitter cuts page text into overlapping chunks. It prefers to break at
// the largest boundary available inside the size window: paragraph first,
// then line, then word. When a single unbroken run of text exceeds the
// chunk size it is cut hard at the limit.
type Splitter struct {
	chunkSize int
	overlap   int
}

var separators = []string{"\n\n", "\n", " "}

func New(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = models.DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = chunkSize / 5
	}
	return &Splitter{chunkSize: chunkSize, overlap: overlap}
}

// Split returns chunks of at most chunkSize runes. Consecutive chunks share
// exactly overlap runes, except the last chunk which only carries the tail.
// StartIndex is the rune offset of the chunk within text.
func (s *Splitter) Split(text string) []models.Chunk {
	runes := []rune(text)
	total := len(runes)
	if total == 0 {
		return nil
	}
	if total <= s.chunkSize {
		return []models.Chunk{{Text: text, StartIndex: 0}}
	}

	var chunks []models.Chunk
	start := 0
	for start < total {
		end := start + s.chunkSize
		if end >= total {
			chunks = append(chunks, models.Chunk{
				Text:       string(runes[start:total]),
				StartIndex: start,
			})
			break
		}

		cut := s.findCut(runes[start:end])
		chunks = append(chunks, models.Chunk{
			Text:       string(runes[start : start+cut]),
			StartIndex: start,
		})
		start = start + cut - s.overlap
	}
	return chunks
}

// findCut picks a cut position inside the window, after the overlap point
// so the splitter always advances. Falls back to the full window.
func (s *Splitter) findCut(window []rune) int {
	text := string(window)
	for _, sep := range separators {
		idx := strings.LastIndex(text, sep)
		if idx < 0 {
			continue
		}
		cut := len([]rune(text[:idx])) + len([]rune(sep))
		if cut > s.overlap {
			return cut
		}
	}
	return len(window)
}
