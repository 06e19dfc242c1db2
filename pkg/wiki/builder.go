package wiki

import (
	"context"
	"errors"

	"github.com/inkgraph/backend/pkg/common"
	"github.com/inkgraph/backend/pkg/logger"
	"github.com/inkgraph/backend/pkg/store"
)

// BuildSummary reports what one Build run did to a book's graph.
type BuildSummary struct {
	ChaptersProcessed int `json:"chapters_processed"`
	EntitiesCreated   int `json:"entities_created"`
	EntitiesMerged    int `json:"entities_merged"`
	LinksSkipped      int `json:"links_skipped"`
}

// Build runs the incremental construction loop for a book until the corpus
// is exhausted: assemble context from the active entities, read the next
// chunk of chapters, extract entities, resolve them against the graph, link
// their relations, then durably advance the cursor.
//
// The cursor is persisted only after a chunk is fully linked, so a crash
// mid-cycle replays the same chapter range idempotently. Cancellation is
// honored between cycles.
func (c *WikiClient) Build(ctx context.Context, bookID string) (*BuildSummary, error) {
	startChapter, err := c.progress.GetProgress(ctx, bookID)
	if err != nil {
		return nil, err
	}

	reader := NewChunkReader(c.corpus, bookID, c.chunkLength, startChapter)
	assembler := NewContextAssembler(c.graph, bookID, c.bfsDepth, c.maxSummaries, c.maxContextTokens)

	summary := &BuildSummary{}
	active := make([]string, 0)

	logger.Info("[Wiki] Build started", "book_id", bookID, "start_chapter", startChapter)

	for {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		graphContext, err := assembler.BuildContext(ctx, active)
		if err != nil {
			return summary, err
		}

		chunk, start, end, err := reader.ReadChunk(ctx)
		if err != nil {
			if errors.Is(err, ErrEmptySource) {
				logger.Info("[Wiki] Build finished", "book_id", bookID,
					"chapters", summary.ChaptersProcessed,
					"created", summary.EntitiesCreated,
					"merged", summary.EntitiesMerged)
				return summary, nil
			}
			return summary, err
		}

		entities, err := c.extractEntities(ctx, graphContext, chunk, start, end)
		if err != nil {
			return summary, err
		}

		chunkKey := common.ChunkRangeKey(start, end)
		resolutions := make(map[string]*resolution, len(entities))
		nextActive := make([]string, 0, len(entities))

		for _, entity := range entities {
			res, err := c.resolveEntity(ctx, assembler, bookID, entity, chunkKey)
			if err != nil {
				logger.Error("[Wiki] Entity resolution failed, skipping",
					"book_id", bookID, "entity", entity.Name, "err", err)
				continue
			}
			resolutions[entity.Name] = res
			nextActive = append(nextActive, res.Name)
			if res.Created {
				summary.EntitiesCreated++
			} else {
				summary.EntitiesMerged++
			}
		}

		summary.LinksSkipped += c.linkRelations(ctx, bookID, entities, resolutions)

		if err := c.progress.SaveProgress(ctx, bookID, reader.Cursor()); err != nil {
			return summary, err
		}

		summary.ChaptersProcessed += end - start
		active = nextActive

		logger.Debug("[Wiki] Cycle complete", "book_id", bookID,
			"chunk", chunkKey, "entities", len(entities))
	}
}

// linkRelations adds one edge per extracted relation, from the resolved
// source node. Relation targets that resolved under a different name this
// cycle are linked under that name; targets missing from the graph are
// logged and skipped. Returns the number of skipped links.
func (c *WikiClient) linkRelations(
	ctx context.Context,
	bookID string,
	entities []common.ExtractedEntity,
	resolutions map[string]*resolution,
) int {
	skipped := 0
	for _, entity := range entities {
		res, ok := resolutions[entity.Name]
		if !ok {
			continue
		}
		for _, rel := range entity.Relationships {
			if rel.Target == "" {
				continue
			}
			target := rel.Target
			if targetRes, ok := resolutions[rel.Target]; ok {
				target = targetRes.Name
			}

			edgeType := SanitizeEdgeType(rel.Relation)
			err := c.graph.AddEdge(ctx, bookID, res.Name, target, edgeType)
			if err != nil {
				if errors.Is(err, store.ErrEdgeTargetMissing) {
					logger.Debug("[Wiki] Skipping link to unknown entity",
						"book_id", bookID, "source", res.Name, "target", target)
					skipped++
					continue
				}
				logger.Error("[Wiki] Failed to add edge",
					"book_id", bookID, "source", res.Name, "target", target, "err", err)
				skipped++
			}
		}
	}
	return skipped
}
