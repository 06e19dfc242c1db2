package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/inkgraph/backend/internal/storage"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// CorpusStore keeps each book's chapters as plain-text objects under
// books/{bookID}/{chapter}.txt. It implements store.CorpusStore.
type CorpusStore struct {
	client *awss3.Client
}

// NewCorpusStore creates a chapter store backed by the given S3 client.
func NewCorpusStore(client *awss3.Client) *CorpusStore {
	return &CorpusStore{client: client}
}

func chapterKey(bookID string, chapter int) string {
	return fmt.Sprintf("books/%s/%d.txt", bookID, chapter)
}

// GetChapter returns the text of one chapter, or an empty string when the
// object does not exist.
func (s *CorpusStore) GetChapter(ctx context.Context, bookID string, chapter int) (string, error) {
	data, err := storage.GetFile(ctx, s.client, chapterKey(bookID, chapter))
	if err != nil {
		if isNotFound(err) {
			return "", nil
		}
		return "", err
	}
	return string(data), nil
}

// PutChapter stores or replaces the text of one chapter.
func (s *CorpusStore) PutChapter(ctx context.Context, bookID string, chapter int, text string) error {
	reader := bytes.NewReader([]byte(text))
	return storage.PutFile(ctx, s.client, chapterKey(bookID, chapter), "text/plain; charset=utf-8", reader)
}

// CountChapters counts the numeric chapter objects stored for a book.
func (s *CorpusStore) CountChapters(ctx context.Context, bookID string) (int, error) {
	prefix := fmt.Sprintf("books/%s/", bookID)
	keys, err := storage.ListFilesWithPrefix(ctx, s.client, prefix)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, key := range keys {
		name := strings.TrimPrefix(key, prefix)
		name = strings.TrimSuffix(name, ".txt")
		if _, err := strconv.Atoi(name); err == nil {
			count++
		}
	}
	return count, nil
}

// DeleteBook removes every stored chapter object of a book.
func (s *CorpusStore) DeleteBook(ctx context.Context, bookID string) error {
	return storage.DeleteFolder(ctx, s.client, fmt.Sprintf("books/%s/", bookID))
}

func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NoSuchKey" || code == "NotFound"
	}
	return false
}
