package pgx

import (
	"context"
	"errors"

	"github.com/inkgraph/backend/internal/util"

	pgxv5 "github.com/jackc/pgx/v5"
)

// GetChapter returns the text of one chapter, or an empty string when the
// chapter does not exist. The reader treats the empty string as end of book.
func (s *WikiDBStorage) GetChapter(ctx context.Context, bookID string, chapter int) (string, error) {
	var content string
	err := s.conn.QueryRow(ctx, getChapterSQL, bookID, chapter).Scan(&content)
	if err != nil {
		if errors.Is(err, pgxv5.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return content, nil
}

// PutChapter stores or replaces the text of one chapter.
func (s *WikiDBStorage) PutChapter(ctx context.Context, bookID string, chapter int, text string) error {
	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	_, err := s.conn.Exec(ctx, putChapterSQL, bookID, chapter, util.SanitizePostgresText(text))
	return err
}

// CountChapters returns how many chapters are stored for a book.
func (s *WikiDBStorage) CountChapters(ctx context.Context, bookID string) (int, error) {
	var count int
	err := s.conn.QueryRow(ctx, countChaptersSQL, bookID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteBook removes every stored chapter of a book.
func (s *WikiDBStorage) DeleteBook(ctx context.Context, bookID string) error {
	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	_, err := s.conn.Exec(ctx, deleteChaptersSQL, bookID)
	return err
}

const getChapterSQL = `
SELECT content FROM wiki_chapters WHERE book_id = $1 AND chapter = $2;
`

const putChapterSQL = `
INSERT INTO wiki_chapters (book_id, chapter, content)
VALUES ($1, $2, $3)
ON CONFLICT (book_id, chapter) DO UPDATE
SET content = EXCLUDED.content, updated_at = now();
`

const countChaptersSQL = `
SELECT count(*) FROM wiki_chapters WHERE book_id = $1;
`

const deleteChaptersSQL = `
DELETE FROM wiki_chapters WHERE book_id = $1;
`
