package pgx

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/inkgraph/backend/pkg/common"
	"github.com/inkgraph/backend/pkg/logger"

	"github.com/pgvector/pgvector-go"
)

// embedSummary produces the embedding stored on a node upsert: the vector of
// the newest chapter-range entry in the summary map. Returns nil (SQL NULL)
// when no AI client is configured or the summary is empty; embedding
// failures are logged and skipped so graph writes never depend on the
// embedding endpoint.
func (s *WikiDBStorage) embedSummary(ctx context.Context, summary map[string]string) *pgvector.Vector {
	if s.aiClient == nil || len(summary) == 0 {
		return nil
	}

	newestKey := ""
	for key := range summary {
		if newestKey == "" || common.ChunkRangeStart(key) > common.ChunkRangeStart(newestKey) {
			newestKey = key
		}
	}
	text := summary[newestKey]
	if text == "" {
		return nil
	}

	embedding, err := s.aiClient.GenerateEmbedding(ctx, []byte(text))
	if err != nil {
		logger.Warn("[Store] Embedding generation failed, storing node without embedding", "err", err)
		return nil
	}

	vec := pgvector.NewVector(embedding)
	return &vec
}

// SearchSimilarEntities returns the nodes of a book closest to the query
// embedding by cosine distance, nearest first. Nodes without a stored
// embedding are skipped.
func (s *WikiDBStorage) SearchSimilarEntities(
	ctx context.Context,
	bookID string,
	embedding []float32,
	limit int32,
) ([]common.EntityNode, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.conn.Query(ctx, searchSimilarSQL, bookID, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	nodes := make([]common.EntityNode, 0, limit)
	for rows.Next() {
		var (
			node        common.EntityNode
			summaryJSON []byte
		)
		if err := rows.Scan(&node.ID, &node.Name, &node.Category, &summaryJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(summaryJSON, &node.Summary); err != nil {
			return nil, fmt.Errorf("decode summary for %q: %w", node.Name, err)
		}
		nodes = append(nodes, node)
	}
	return nodes, rows.Err()
}

const searchSimilarSQL = `
SELECT public_id, name, category, summary
FROM wiki_nodes
WHERE book_id = $1 AND embedding IS NOT NULL
ORDER BY embedding <=> $2
LIMIT $3;
`
