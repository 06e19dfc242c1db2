package wiki

import (
	"context"
	"errors"
	"strings"

	"github.com/inkgraph/backend/pkg/logger"
	"github.com/inkgraph/backend/pkg/store"

	"golang.org/x/sync/errgroup"
)

// BatchSummary reports what one BatchExtract run produced.
type BatchSummary struct {
	ChaptersExtracted int `json:"chapters_extracted"`
	ChaptersSkipped   int `json:"chapters_skipped"`
	EntitiesBuffered  int `json:"entities_buffered"`
}

// BatchExtract runs context-free extraction over every chapter of a book
// with a bounded worker pool and buffers the raw payloads in the entity
// buffer. Unlike Build it carries no context between chapters and never
// mutates the graph; the buffer is meant for replay and audit.
func (c *WikiClient) BatchExtract(ctx context.Context, bookID string, workers int) (*BatchSummary, error) {
	if c.buffer == nil {
		return nil, errors.New("batch extraction requires an entity buffer")
	}
	if workers < 1 {
		workers = 1
	}

	total, err := c.corpus.CountChapters(ctx, bookID)
	if err != nil {
		return nil, err
	}

	logger.Info("[Wiki] Batch extraction started", "book_id", bookID, "chapters", total, "workers", workers)

	summary := &BatchSummary{}
	results := make([]int, total+1)

	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for chapter := 1; chapter <= total; chapter++ {
		eg.Go(func() error {
			text, err := c.corpus.GetChapter(ectx, bookID, chapter)
			if err != nil {
				return err
			}
			if strings.TrimSpace(text) == "" {
				results[chapter] = -1
				return nil
			}

			entities, err := c.extractEntities(ectx, "", text, chapter, chapter+1)
			if err != nil {
				return err
			}

			err = c.buffer.SaveEntities(ectx, bookID, store.BufferedExtraction{
				StartChapter: chapter,
				EndChapter:   chapter + 1,
				Entities:     entities,
			})
			if err != nil {
				return err
			}

			results[chapter] = len(entities)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return summary, err
	}

	for chapter := 1; chapter <= total; chapter++ {
		switch {
		case results[chapter] < 0:
			summary.ChaptersSkipped++
		default:
			summary.ChaptersExtracted++
			summary.EntitiesBuffered += results[chapter]
		}
	}

	logger.Info("[Wiki] Batch extraction finished", "book_id", bookID,
		"extracted", summary.ChaptersExtracted, "buffered", summary.EntitiesBuffered)
	return summary, nil
}
