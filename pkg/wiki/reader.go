package wiki

import (
	"context"
	"strings"

	"github.com/inkgraph/backend/pkg/store"
)

// ChunkReader pulls consecutive chapters from the corpus in chunks. It keeps
// the in-cycle cursor in memory; the build loop owns durable progress and
// persists the cursor only after a chunk's entities are fully linked.
type ChunkReader struct {
	corpus      store.CorpusStore
	bookID      string
	chunkLength int
	cursor      int
}

// NewChunkReader creates a reader positioned at startChapter. chunkLength
// values below 1 are clamped to 1.
func NewChunkReader(corpus store.CorpusStore, bookID string, chunkLength int, startChapter int) *ChunkReader {
	if chunkLength < 1 {
		chunkLength = 1
	}
	if startChapter < 1 {
		startChapter = 1
	}
	return &ChunkReader{
		corpus:      corpus,
		bookID:      bookID,
		chunkLength: chunkLength,
		cursor:      startChapter,
	}
}

// Cursor returns the next chapter the reader will consume.
func (r *ChunkReader) Cursor() int {
	return r.cursor
}

// ReadChunk reads up to chunkLength chapters starting at the cursor and
// returns their concatenated text with the consumed range [start, end).
//
// An empty chapter at the very start of a chunk yields ErrEmptySource with
// the cursor unchanged. An empty chapter mid-chunk ends the chunk early:
// the chapters already consumed are returned as a partial chunk, and the
// following call reports ErrEmptySource.
func (r *ChunkReader) ReadChunk(ctx context.Context) (string, int, int, error) {
	start := r.cursor
	parts := make([]string, 0, r.chunkLength)

	for i := 0; i < r.chunkLength; i++ {
		text, err := r.corpus.GetChapter(ctx, r.bookID, r.cursor)
		if err != nil {
			return "", start, r.cursor, err
		}
		if strings.TrimSpace(text) == "" {
			if len(parts) == 0 {
				return "", start, r.cursor, ErrEmptySource
			}
			break
		}
		parts = append(parts, text)
		r.cursor++
	}

	return strings.Join(parts, "\n\n"), start, r.cursor, nil
}
