package queue

// BuildJobMsg asks the worker to run the incremental build loop for one
// book, starting from its persisted cursor.
type BuildJobMsg struct {
	Message string `json:"message"`
	BookID  string `json:"book_id"`

	ChunkLength      int  `json:"chunk_length,omitempty"`
	BFSDepth         int  `json:"bfs_depth,omitempty"`
	MaxSummaries     int  `json:"max_summaries,omitempty"`
	MaxContextTokens int  `json:"max_context_tokens,omitempty"`
	FailFast         bool `json:"fail_fast,omitempty"`
}

// BatchJobMsg asks the worker to run context-free extraction over every
// chapter of a book into the entity buffer.
type BatchJobMsg struct {
	Message string `json:"message"`
	BookID  string `json:"book_id"`
	Workers int    `json:"workers,omitempty"`
}
