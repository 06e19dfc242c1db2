package wiki

import (
	"github.com/inkgraph/backend/pkg/ai"
	"github.com/inkgraph/backend/pkg/store"
)

const (
	defaultChunkLength  = 1
	defaultBFSDepth     = 1
	defaultMaxSummaries = 10
	defaultMaxRetries   = 3
)

// WikiClient drives the incremental construction of a book's knowledge
// graph: reading chapters, extracting entities with the generation service,
// resolving them against the existing graph, and linking relations.
//
// A WikiClient should be created using NewWikiClient.
type WikiClient struct {
	aiClient ai.WikiAIClient
	graph    store.GraphStore
	progress store.ProgressStore
	corpus   store.CorpusStore
	buffer   store.EntityBuffer

	chunkLength      int
	bfsDepth         int
	maxSummaries     int
	maxContextTokens int
	maxRetries       int
	failFast         bool
}

// NewWikiClientParams defines the configuration for creating a WikiClient.
//
// ChunkLength is the number of chapters consumed per build cycle.
// BFSDepth and MaxSummaries shape the assembled context.
// MaxContextTokens caps the rendered context (0 = uncapped).
// MaxRetries bounds extraction retries per cycle; with FailFast a single
// malformed extraction terminates the build.
// Buffer is only needed for batch extraction and may be nil otherwise.
type NewWikiClientParams struct {
	AIClient ai.WikiAIClient
	Graph    store.GraphStore
	Progress store.ProgressStore
	Corpus   store.CorpusStore
	Buffer   store.EntityBuffer

	ChunkLength      int
	BFSDepth         int
	MaxSummaries     int
	MaxContextTokens int
	MaxRetries       int
	FailFast         bool
}

// NewWikiClient creates a WikiClient with the provided parameters, filling
// unset numeric options with defaults.
func NewWikiClient(params NewWikiClientParams) *WikiClient {
	chunkLength := params.ChunkLength
	if chunkLength < 1 {
		chunkLength = defaultChunkLength
	}
	bfsDepth := params.BFSDepth
	if bfsDepth < 1 {
		bfsDepth = defaultBFSDepth
	}
	maxSummaries := params.MaxSummaries
	if maxSummaries < 1 {
		maxSummaries = defaultMaxSummaries
	}
	maxRetries := params.MaxRetries
	if maxRetries < 1 {
		maxRetries = defaultMaxRetries
	}
	if params.FailFast {
		maxRetries = 1
	}

	return &WikiClient{
		aiClient: params.AIClient,
		graph:    params.Graph,
		progress: params.Progress,
		corpus:   params.Corpus,
		buffer:   params.Buffer,

		chunkLength:      chunkLength,
		bfsDepth:         bfsDepth,
		maxSummaries:     maxSummaries,
		maxContextTokens: params.MaxContextTokens,
		maxRetries:       maxRetries,
		failFast:         params.FailFast,
	}
}
