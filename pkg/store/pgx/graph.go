package pgx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/inkgraph/backend/internal/util"
	"github.com/inkgraph/backend/pkg/common"
	"github.com/inkgraph/backend/pkg/store"

	pgxv5 "github.com/jackc/pgx/v5"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// AddEntityNode inserts a new node. It fails if a node with the same name
// already exists for the book; callers that want merge semantics use
// UpdateEntityNode.
func (s *WikiDBStorage) AddEntityNode(
	ctx context.Context,
	bookID string,
	node common.EntityNode,
) error {
	publicID, err := gonanoid.New()
	if err != nil {
		return err
	}

	summary, err := marshalSummary(node.Summary)
	if err != nil {
		return err
	}
	embedding := s.embedSummary(ctx, node.Summary)

	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	_, err = s.conn.Exec(ctx, insertNodeSQL,
		publicID,
		bookID,
		util.SanitizePostgresText(node.Name),
		util.SanitizePostgresText(node.Category),
		summary,
		embedding,
	)
	return err
}

// UpdateEntityNode upserts a node by name. The summary map is merged
// append-only: chapter-range keys already present on the stored node are
// never overwritten. An empty incoming category keeps the stored one.
func (s *WikiDBStorage) UpdateEntityNode(
	ctx context.Context,
	bookID string,
	node common.EntityNode,
) error {
	publicID, err := gonanoid.New()
	if err != nil {
		return err
	}

	summary, err := marshalSummary(node.Summary)
	if err != nil {
		return err
	}
	embedding := s.embedSummary(ctx, node.Summary)

	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	_, err = s.conn.Exec(ctx, upsertNodeSQL,
		publicID,
		bookID,
		util.SanitizePostgresText(node.Name),
		util.SanitizePostgresText(node.Category),
		summary,
		embedding,
	)
	return err
}

// GetEntityNode loads a node by name, resolving through at most one alias
// hop. Returns (nil, nil) when neither the name nor its alias target exists.
func (s *WikiDBStorage) GetEntityNode(
	ctx context.Context,
	bookID string,
	name string,
) (*common.EntityNode, error) {
	var (
		node        common.EntityNode
		summaryJSON []byte
	)
	err := s.conn.QueryRow(ctx, getNodeSQL, bookID, name).Scan(
		&node.ID,
		&node.Name,
		&node.Category,
		&summaryJSON,
	)
	if err != nil {
		if errors.Is(err, pgxv5.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(summaryJSON, &node.Summary); err != nil {
		return nil, fmt.Errorf("decode summary for %q: %w", node.Name, err)
	}

	relations, err := s.getRelations(ctx, bookID, node.Name)
	if err != nil {
		return nil, err
	}
	node.Relations = relations

	return &node, nil
}

// ListEntityNodes returns every node of a book with its relations.
func (s *WikiDBStorage) ListEntityNodes(
	ctx context.Context,
	bookID string,
) ([]common.EntityNode, error) {
	rows, err := s.conn.Query(ctx, listNodesSQL, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	nodes := make([]common.EntityNode, 0)
	index := make(map[string]int)
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
		index[node.Name] = len(nodes)
		nodes = append(nodes, node)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	edgeRows, err := s.conn.Query(ctx, listEdgesSQL, bookID)
	if err != nil {
		return nil, err
	}
	defer edgeRows.Close()

	for edgeRows.Next() {
		var edge common.Edge
		if err := edgeRows.Scan(&edge.Source, &edge.Target, &edge.Type); err != nil {
			return nil, err
		}
		if idx, ok := index[edge.Source]; ok {
			nodes[idx].Relations = append(nodes[idx].Relations, common.Relation{
				Target: edge.Target,
				Type:   edge.Type,
			})
		}
	}
	if err := edgeRows.Err(); err != nil {
		return nil, err
	}

	return nodes, nil
}

// AddEdge creates a typed edge between two existing nodes. Duplicate edges
// are merged. A missing target yields store.ErrEdgeTargetMissing and no
// write; a missing source is a hard error because the builder always links
// from a node it just persisted.
func (s *WikiDBStorage) AddEdge(
	ctx context.Context,
	bookID string,
	source string,
	target string,
	edgeType string,
) error {
	var sourceID, targetID *int64
	err := s.conn.QueryRow(ctx, getEdgeEndpointsSQL, bookID, source, target).Scan(&sourceID, &targetID)
	if err != nil {
		return err
	}
	if targetID == nil {
		return fmt.Errorf("%w: %s", store.ErrEdgeTargetMissing, target)
	}
	if sourceID == nil {
		return fmt.Errorf("edge source does not exist: %s", source)
	}

	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	_, err = s.conn.Exec(ctx, insertEdgeSQL, bookID, *sourceID, *targetID, util.SanitizePostgresText(edgeType))
	return err
}

// CreateAlias records that from redirects to to. Alias chains are flattened
// at creation time: the redirect target is resolved first, and existing
// aliases pointing at from are repointed, so reads never need more than one
// hop.
func (s *WikiDBStorage) CreateAlias(
	ctx context.Context,
	bookID string,
	from string,
	to string,
) error {
	resolved := to
	var hop string
	err := s.conn.QueryRow(ctx, getAliasSQL, bookID, to).Scan(&hop)
	if err != nil && !errors.Is(err, pgxv5.ErrNoRows) {
		return err
	}
	if err == nil {
		resolved = hop
	}

	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, upsertAliasSQL, bookID, from, resolved); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, repointAliasesSQL, bookID, from, resolved); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// BFS walks outgoing edges from start up to depth hops and returns every
// reached name including start. Alias redirects are not edges and are never
// traversed.
func (s *WikiDBStorage) BFS(
	ctx context.Context,
	bookID string,
	start string,
	depth int,
) ([]string, error) {
	visited := map[string]bool{start: true}
	frontier := []string{start}

	for hop := 0; hop < depth && len(frontier) > 0; hop++ {
		rows, err := s.conn.Query(ctx, bfsNeighborsSQL, bookID, frontier)
		if err != nil {
			return nil, err
		}

		next := make([]string, 0)
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				rows.Close()
				return nil, err
			}
			if !visited[name] {
				visited[name] = true
				next = append(next, name)
			}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}
		frontier = next
	}

	out := make([]string, 0, len(visited))
	for name := range visited {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

// GetCategories returns the distinct category vocabulary of a book.
// Concurrent callers share a single query via singleflight.
func (s *WikiDBStorage) GetCategories(ctx context.Context, bookID string) ([]string, error) {
	res, err, _ := s.reads.Do("categories:"+bookID, func() (any, error) {
		rows, err := s.conn.Query(ctx, getCategoriesSQL, bookID)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		categories := make([]string, 0)
		for rows.Next() {
			var category string
			if err := rows.Scan(&category); err != nil {
				return nil, err
			}
			categories = append(categories, category)
		}
		return categories, rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return res.([]string), nil
}

func (s *WikiDBStorage) getRelations(
	ctx context.Context,
	bookID string,
	name string,
) ([]common.Relation, error) {
	rows, err := s.conn.Query(ctx, getNodeRelationsSQL, bookID, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	relations := make([]common.Relation, 0)
	for rows.Next() {
		var rel common.Relation
		if err := rows.Scan(&rel.Target, &rel.Type); err != nil {
			return nil, err
		}
		relations = append(relations, rel)
	}
	return relations, rows.Err()
}

func marshalSummary(summary map[string]string) ([]byte, error) {
	if summary == nil {
		summary = map[string]string{}
	}
	sanitized := make(map[string]string, len(summary))
	for k, v := range summary {
		sanitized[util.SanitizePostgresText(k)] = util.SanitizePostgresText(v)
	}
	return json.Marshal(sanitized)
}

const insertNodeSQL = `
INSERT INTO wiki_nodes (public_id, book_id, name, category, summary, embedding)
VALUES ($1, $2, $3, $4, $5, $6);
`

// Existing chapter-range keys win the jsonb merge: the stored summary is the
// right operand of ||.
const upsertNodeSQL = `
INSERT INTO wiki_nodes (public_id, book_id, name, category, summary, embedding)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (book_id, name) DO UPDATE
SET category   = CASE WHEN EXCLUDED.category <> '' THEN EXCLUDED.category ELSE wiki_nodes.category END,
    summary    = EXCLUDED.summary || wiki_nodes.summary,
    embedding  = COALESCE(EXCLUDED.embedding, wiki_nodes.embedding),
    updated_at = now();
`

const getNodeSQL = `
SELECT public_id, name, category, summary
FROM wiki_nodes
WHERE book_id = $1
  AND name = COALESCE(
    (SELECT to_name FROM wiki_aliases WHERE book_id = $1 AND from_name = $2),
    $2
  );
`

const listNodesSQL = `
SELECT public_id, name, category, summary
FROM wiki_nodes
WHERE book_id = $1
ORDER BY name;
`

const listEdgesSQL = `
SELECT s.name, t.name, e.type
FROM wiki_edges e
JOIN wiki_nodes s ON s.id = e.source_id
JOIN wiki_nodes t ON t.id = e.target_id
WHERE e.book_id = $1;
`

const getNodeRelationsSQL = `
SELECT t.name, e.type
FROM wiki_edges e
JOIN wiki_nodes s ON s.id = e.source_id
JOIN wiki_nodes t ON t.id = e.target_id
WHERE e.book_id = $1 AND s.name = $2
ORDER BY t.name, e.type;
`

const getEdgeEndpointsSQL = `
SELECT
  (SELECT id FROM wiki_nodes WHERE book_id = $1 AND name = $2),
  (SELECT id FROM wiki_nodes WHERE book_id = $1 AND name = $3);
`

const insertEdgeSQL = `
INSERT INTO wiki_edges (book_id, source_id, target_id, type)
VALUES ($1, $2, $3, $4)
ON CONFLICT (book_id, source_id, target_id, type) DO NOTHING;
`

const getAliasSQL = `
SELECT to_name FROM wiki_aliases WHERE book_id = $1 AND from_name = $2;
`

const upsertAliasSQL = `
INSERT INTO wiki_aliases (book_id, from_name, to_name)
VALUES ($1, $2, $3)
ON CONFLICT (book_id, from_name) DO UPDATE
SET to_name = EXCLUDED.to_name;
`

const repointAliasesSQL = `
UPDATE wiki_aliases
SET to_name = $3
WHERE book_id = $1 AND to_name = $2;
`

const bfsNeighborsSQL = `
SELECT DISTINCT t.name
FROM wiki_edges e
JOIN wiki_nodes s ON s.id = e.source_id
JOIN wiki_nodes t ON t.id = e.target_id
WHERE e.book_id = $1 AND s.name = ANY($2);
`

const getCategoriesSQL = `
SELECT DISTINCT category
FROM wiki_nodes
WHERE book_id = $1 AND category <> ''
ORDER BY category;
`
