package queue

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/inkgraph/backend/pkg/ai"
	"github.com/inkgraph/backend/pkg/leaselock"
	"github.com/inkgraph/backend/pkg/logger"
	"github.com/inkgraph/backend/pkg/store"
	graphstorage "github.com/inkgraph/backend/pkg/store/pgx"
	"github.com/inkgraph/backend/pkg/wiki"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ProcessBuildMessage runs one build job. The book's build lease guards the
// loop: a second job for the same book waits until the first finishes or
// its lease expires.
func ProcessBuildMessage(
	ctx context.Context,
	aiClient ai.WikiAIClient,
	conn *pgxpool.Pool,
	locks *leaselock.Client,
	corpus store.CorpusStore,
	msg string,
) error {
	data := new(BuildJobMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return err
	}
	if data.BookID == "" {
		return errors.New("build job has no book_id")
	}

	storage := graphstorage.NewWikiDBStorageWithConnection(conn, aiClient)
	if corpus == nil {
		corpus = storage
	}

	client := wiki.NewWikiClient(wiki.NewWikiClientParams{
		AIClient: aiClient,
		Graph:    storage,
		Progress: storage,
		Corpus:   corpus,
		Buffer:   storage,

		ChunkLength:      data.ChunkLength,
		BFSDepth:         data.BFSDepth,
		MaxSummaries:     data.MaxSummaries,
		MaxContextTokens: data.MaxContextTokens,
		FailFast:         data.FailFast,
	})

	return locks.WithLease(ctx, leaselock.BookBuildKey(data.BookID), leaselock.Options{
		TTL:         10 * time.Minute,
		Wait:        true,
		WaitJitter:  500 * time.Millisecond,
		TokenPrefix: "build_",
	}, func(ctx context.Context) error {
		summary, err := client.Build(ctx, data.BookID)
		if summary != nil {
			logger.Info("[Queue] Build job finished",
				"book_id", data.BookID,
				"chapters", summary.ChaptersProcessed,
				"created", summary.EntitiesCreated,
				"merged", summary.EntitiesMerged,
				"links_skipped", summary.LinksSkipped,
			)
		}
		return err
	})
}
