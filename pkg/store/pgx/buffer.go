package pgx

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/inkgraph/backend/pkg/store"
)

// SaveEntities appends one raw extraction payload to the book's buffer.
func (s *WikiDBStorage) SaveEntities(
	ctx context.Context,
	bookID string,
	extraction store.BufferedExtraction,
) error {
	payload, err := json.Marshal(extraction.Entities)
	if err != nil {
		return err
	}

	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	_, err = s.conn.Exec(ctx, saveBufferSQL,
		bookID,
		extraction.StartChapter,
		extraction.EndChapter,
		payload,
	)
	return err
}

// GetEntities returns every buffered extraction for a book, ordered by start
// chapter.
func (s *WikiDBStorage) GetEntities(
	ctx context.Context,
	bookID string,
) ([]store.BufferedExtraction, error) {
	rows, err := s.conn.Query(ctx, getBufferSQL, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]store.BufferedExtraction, 0)
	for rows.Next() {
		var (
			extraction store.BufferedExtraction
			payload    []byte
		)
		if err := rows.Scan(&extraction.StartChapter, &extraction.EndChapter, &payload); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(payload, &extraction.Entities); err != nil {
			return nil, fmt.Errorf("decode buffered extraction c%d: %w", extraction.StartChapter, err)
		}
		out = append(out, extraction)
	}
	return out, rows.Err()
}

// ClearBuffer removes every buffered extraction for a book.
func (s *WikiDBStorage) ClearBuffer(ctx context.Context, bookID string) error {
	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	_, err := s.conn.Exec(ctx, clearBufferSQL, bookID)
	return err
}

const saveBufferSQL = `
INSERT INTO wiki_entity_buffer (book_id, start_chapter, end_chapter, payload)
VALUES ($1, $2, $3, $4);
`

const getBufferSQL = `
SELECT start_chapter, end_chapter, payload
FROM wiki_entity_buffer
WHERE book_id = $1
ORDER BY start_chapter, id;
`

const clearBufferSQL = `
DELETE FROM wiki_entity_buffer WHERE book_id = $1;
`
