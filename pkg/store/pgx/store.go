package pgx

import (
	"context"
	"sync"

	"github.com/inkgraph/backend/pkg/ai"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/sync/singleflight"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
	Begin(ctx context.Context) (pgxv5.Tx, error)
}

// WikiDBStorage implements the store interfaces (GraphStore, ProgressStore,
// CorpusStore, EntityBuffer, SimilaritySearcher) on PostgreSQL with pgvector
// for the embedding index. Writes are serialized with a mutex; hot reads are
// deduplicated with singleflight.
type WikiDBStorage struct {
	conn     pgxIConn
	aiClient ai.WikiAIClient
	dbLock   sync.Mutex
	reads    singleflight.Group
}

// NewWikiDBStorageWithConnection creates a new WikiDBStorage using an
// existing database connection. The AI client is used to embed node
// summaries on upsert; it may be nil, in which case embeddings are skipped.
func NewWikiDBStorageWithConnection(
	conn pgxIConn,
	aiClient ai.WikiAIClient,
) *WikiDBStorage {
	return &WikiDBStorage{
		conn:     conn,
		aiClient: aiClient,
		dbLock:   sync.Mutex{},
	}
}
