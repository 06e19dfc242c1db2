package wiki

import (
	"context"
	"errors"
	"testing"
)

func TestReadChunkEmptySource(t *testing.T) {
	corpus := newFakeCorpusStore()
	reader := NewChunkReader(corpus, "book", 2, 1)

	_, start, _, err := reader.ReadChunk(context.Background())
	if !errors.Is(err, ErrEmptySource) {
		t.Fatalf("expected ErrEmptySource, got %v", err)
	}
	if start != 1 {
		t.Errorf("expected start 1, got %d", start)
	}
	if reader.Cursor() != 1 {
		t.Errorf("cursor must not advance on empty source, got %d", reader.Cursor())
	}
}

func TestReadChunkFullChunk(t *testing.T) {
	ctx := context.Background()
	corpus := newFakeCorpusStore()
	_ = corpus.PutChapter(ctx, "book", 1, "first chapter")
	_ = corpus.PutChapter(ctx, "book", 2, "second chapter")
	_ = corpus.PutChapter(ctx, "book", 3, "third chapter")

	reader := NewChunkReader(corpus, "book", 2, 1)

	text, start, end, err := reader.ReadChunk(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start != 1 || end != 3 {
		t.Errorf("expected range [1, 3), got [%d, %d)", start, end)
	}
	if text != "first chapter\n\nsecond chapter" {
		t.Errorf("unexpected chunk text: %q", text)
	}
	if reader.Cursor() != 3 {
		t.Errorf("expected cursor 3, got %d", reader.Cursor())
	}
}

func TestReadChunkPartialThenEmpty(t *testing.T) {
	ctx := context.Background()
	corpus := newFakeCorpusStore()
	_ = corpus.PutChapter(ctx, "book", 1, "first chapter")
	_ = corpus.PutChapter(ctx, "book", 2, "second chapter")
	_ = corpus.PutChapter(ctx, "book", 3, "third chapter")

	reader := NewChunkReader(corpus, "book", 2, 3)

	text, start, end, err := reader.ReadChunk(ctx)
	if err != nil {
		t.Fatalf("partial chunk must not error: %v", err)
	}
	if start != 3 || end != 4 {
		t.Errorf("expected range [3, 4), got [%d, %d)", start, end)
	}
	if text != "third chapter" {
		t.Errorf("unexpected chunk text: %q", text)
	}

	_, _, _, err = reader.ReadChunk(ctx)
	if !errors.Is(err, ErrEmptySource) {
		t.Fatalf("expected ErrEmptySource after partial chunk, got %v", err)
	}
	if reader.Cursor() != 4 {
		t.Errorf("expected cursor 4, got %d", reader.Cursor())
	}
}

func TestReadChunkBlankChapterEndsChunk(t *testing.T) {
	ctx := context.Background()
	corpus := newFakeCorpusStore()
	_ = corpus.PutChapter(ctx, "book", 1, "first chapter")
	_ = corpus.PutChapter(ctx, "book", 2, "   \n ")
	_ = corpus.PutChapter(ctx, "book", 3, "third chapter")

	reader := NewChunkReader(corpus, "book", 3, 1)

	text, start, end, err := reader.ReadChunk(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start != 1 || end != 2 {
		t.Errorf("expected range [1, 2), got [%d, %d)", start, end)
	}
	if text != "first chapter" {
		t.Errorf("unexpected chunk text: %q", text)
	}
}

func TestNewChunkReaderClamps(t *testing.T) {
	corpus := newFakeCorpusStore()
	reader := NewChunkReader(corpus, "book", 0, -5)
	if reader.chunkLength != 1 {
		t.Errorf("expected chunk length clamped to 1, got %d", reader.chunkLength)
	}
	if reader.Cursor() != 1 {
		t.Errorf("expected cursor clamped to 1, got %d", reader.Cursor())
	}
}
