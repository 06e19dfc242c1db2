package wiki

import (
	"errors"
	"fmt"
)

// ErrEmptySource signals that the reader hit a missing or empty chapter at
// the cursor: the book is exhausted. The cursor is not advanced past the
// empty chapter, so a later upload of more chapters resumes cleanly.
var ErrEmptySource = errors.New("no more chapters at cursor")

// MalformedExtractionError is returned when the generation service could not
// produce a usable extraction payload after the configured retries. The
// whole cycle's entity set is discarded; no node was applied.
type MalformedExtractionError struct {
	StartChapter int
	EndChapter   int
	Err          error
}

func (e *MalformedExtractionError) Error() string {
	return fmt.Sprintf(
		"malformed extraction for chapters %d-%d: %v",
		e.StartChapter, e.EndChapter, e.Err,
	)
}

func (e *MalformedExtractionError) Unwrap() error {
	return e.Err
}
