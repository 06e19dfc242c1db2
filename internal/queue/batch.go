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

// ProcessBatchMessage runs one batch extraction job under the book's build
// lease so it cannot interleave with an incremental build.
func ProcessBatchMessage(
	ctx context.Context,
	aiClient ai.WikiAIClient,
	conn *pgxpool.Pool,
	locks *leaselock.Client,
	corpus store.CorpusStore,
	msg string,
) error {
	data := new(BatchJobMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return err
	}
	if data.BookID == "" {
		return errors.New("batch job has no book_id")
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
	})

	return locks.WithLease(ctx, leaselock.BookBuildKey(data.BookID), leaselock.Options{
		TTL:         10 * time.Minute,
		Wait:        true,
		WaitJitter:  500 * time.Millisecond,
		TokenPrefix: "batch_",
	}, func(ctx context.Context) error {
		summary, err := client.BatchExtract(ctx, data.BookID, data.Workers)
		if summary != nil {
			logger.Info("[Queue] Batch job finished",
				"book_id", data.BookID,
				"extracted", summary.ChaptersExtracted,
				"skipped", summary.ChaptersSkipped,
				"buffered", summary.EntitiesBuffered,
			)
		}
		return err
	})
}
