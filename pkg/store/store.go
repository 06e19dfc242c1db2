package store

import (
	"context"
	"errors"

	"github.com/inkgraph/backend/pkg/common"
)

// ErrEdgeTargetMissing signals that AddEdge was asked to link to an entity
// that does not exist in the graph. The edge is not created; callers log and
// continue.
var ErrEdgeTargetMissing = errors.New("edge target does not exist")

// GraphStore persists the knowledge graph of a book: entity nodes, typed
// edges between them, and alias redirects.
//
// Node reads resolve through at most one alias hop; returned nodes never
// carry an outgoing alias. BFS never traverses alias edges.
type GraphStore interface {
	AddEntityNode(ctx context.Context, bookID string, node common.EntityNode) error
	UpdateEntityNode(ctx context.Context, bookID string, node common.EntityNode) error
	GetEntityNode(ctx context.Context, bookID string, name string) (*common.EntityNode, error)
	ListEntityNodes(ctx context.Context, bookID string) ([]common.EntityNode, error)

	AddEdge(ctx context.Context, bookID string, source string, target string, edgeType string) error
	CreateAlias(ctx context.Context, bookID string, from string, to string) error

	BFS(ctx context.Context, bookID string, start string, depth int) ([]string, error)
	GetCategories(ctx context.Context, bookID string) ([]string, error)
}

// SimilaritySearcher finds entity nodes whose stored embedding is close to
// the query embedding. Implementations that do not index embeddings may
// return an empty result.
type SimilaritySearcher interface {
	SearchSimilarEntities(
		ctx context.Context,
		bookID string,
		embedding []float32,
		limit int32,
	) ([]common.EntityNode, error)
}

// ProgressStore tracks the next chapter to read per book. A book with no
// recorded progress starts at chapter 1; absence is not an error.
type ProgressStore interface {
	GetProgress(ctx context.Context, bookID string) (int, error)
	SaveProgress(ctx context.Context, bookID string, chapter int) error
	ResetProgress(ctx context.Context, bookID string) error
}

// CorpusStore holds the chapter text of each book. GetChapter returns an
// empty string (not an error) when the chapter does not exist.
type CorpusStore interface {
	GetChapter(ctx context.Context, bookID string, chapter int) (string, error)
	PutChapter(ctx context.Context, bookID string, chapter int, text string) error
	CountChapters(ctx context.Context, bookID string) (int, error)
	DeleteBook(ctx context.Context, bookID string) error
}

// BufferedExtraction is one raw extraction payload saved for a chunk of
// chapters, kept for replay and audit.
type BufferedExtraction struct {
	StartChapter int                      `json:"start_chapter"`
	EndChapter   int                      `json:"end_chapter"`
	Entities     []common.ExtractedEntity `json:"entities"`
}

// EntityBuffer persists raw extraction payloads keyed by chapter range.
// Batch extraction writes here instead of mutating the graph directly.
type EntityBuffer interface {
	SaveEntities(ctx context.Context, bookID string, extraction BufferedExtraction) error
	GetEntities(ctx context.Context, bookID string) ([]BufferedExtraction, error)
	ClearBuffer(ctx context.Context, bookID string) error
}
