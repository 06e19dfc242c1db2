package pgx

import (
	"context"
	"errors"

	pgxv5 "github.com/jackc/pgx/v5"
)

// GetProgress returns the next chapter to read for a book. A book without a
// progress row starts at chapter 1.
func (s *WikiDBStorage) GetProgress(ctx context.Context, bookID string) (int, error) {
	var chapter int
	err := s.conn.QueryRow(ctx, getProgressSQL, bookID).Scan(&chapter)
	if err != nil {
		if errors.Is(err, pgxv5.ErrNoRows) {
			return 1, nil
		}
		return 0, err
	}
	if chapter < 1 {
		chapter = 1
	}
	return chapter, nil
}

// SaveProgress overwrites the cursor for a book. Idempotent.
func (s *WikiDBStorage) SaveProgress(ctx context.Context, bookID string, chapter int) error {
	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	_, err := s.conn.Exec(ctx, saveProgressSQL, bookID, chapter)
	return err
}

// ResetProgress deletes the cursor; the next read starts over at chapter 1.
func (s *WikiDBStorage) ResetProgress(ctx context.Context, bookID string) error {
	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	_, err := s.conn.Exec(ctx, resetProgressSQL, bookID)
	return err
}

const getProgressSQL = `
SELECT chapter FROM wiki_progress WHERE book_id = $1;
`

const saveProgressSQL = `
INSERT INTO wiki_progress (book_id, chapter)
VALUES ($1, $2)
ON CONFLICT (book_id) DO UPDATE
SET chapter = EXCLUDED.chapter, updated_at = now();
`

const resetProgressSQL = `
DELETE FROM wiki_progress WHERE book_id = $1;
`
