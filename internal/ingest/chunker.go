package ingest

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hyperjump/tanya/internal/extract"
	"github.com/hyperjump/tanya/internal/models"
	"github.com/tmc/langchaingo/textsplitter"
)

// Separators are tried in order: paragraph, line, word, character.
var separators = []string{"\n\n", "\n", " ", ""}

// Chunker splits page text into overlapping, size-bounded chunks.
// Sizes are measured in characters.
type Chunker struct {
	splitter     textsplitter.RecursiveCharacter
	chunkSize    int
	chunkOverlap int
}

// NewChunker creates a chunker with the given size and overlap (in characters).
func NewChunker(chunkSize, chunkOverlap int) *Chunker {
	return &Chunker{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(chunkOverlap),
			textsplitter.WithSeparators(separators),
		),
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Chunk splits each page separately so a chunk never spans two pages.
// Chunk indexes run across the whole document.
func (c *Chunker) Chunk(docID string, pages []extract.Page) ([]*models.DocumentChunk, error) {
	var chunks []*models.DocumentChunk
	for _, page := range pages {
		text := Preprocess(page.Text)
		if text == "" {
			continue
		}
		parts, err := c.splitter.SplitText(text)
		if err != nil {
			return nil, fmt.Errorf("split page %d: %w", page.Number, err)
		}
		for _, part := range parts {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			chunks = append(chunks, &models.DocumentChunk{
				ID:         fmt.Sprintf("%s_%s", docID, uuid.New().String()),
				DocumentID: docID,
				Content:    part,
				ChunkIndex: len(chunks),
				Page:       page.Number,
			})
		}
	}
	return chunks, nil
}
