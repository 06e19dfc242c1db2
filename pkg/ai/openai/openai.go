package openai

import (
	"sync"

	"github.com/inkgraph/backend/pkg/ai"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/sync/semaphore"
)

// WikiOpenAIClient is an OpenAI-compatible client for the generation and
// embedding calls made while building a book's knowledge graph. It manages
// separate clients for chat/completion and embedding endpoints, which may
// point at different providers.
//
// A WikiOpenAIClient should be created using NewWikiOpenAIClient.
type WikiOpenAIClient struct {
	embeddingModel  string
	mergeModel      string
	extractionModel string

	embeddingURL string
	embeddingKey string
	chatURL      string
	chatKey      string

	timeoutMin int64
	reqLock    *semaphore.Weighted

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	ChatClient      *openai.Client
	EmbeddingClient *openai.Client
}

// NewWikiOpenAIClientParams defines the configuration parameters for creating
// a new WikiOpenAIClient.
//
// ExtractionModel is used for schema-constrained entity extraction.
// MergeModel is used for plain-text merge disambiguation.
// EmbeddingModel, EmbeddingURL and EmbeddingKey configure the embedding endpoint.
// ChatURL and ChatKey configure the chat/completion endpoint.
type NewWikiOpenAIClientParams struct {
	EmbeddingModel  string
	MergeModel      string
	ExtractionModel string

	EmbeddingURL string
	EmbeddingKey string
	ChatURL      string
	ChatKey      string

	TimeoutMin            int64
	MaxConcurrentRequests int64
}

// NewWikiOpenAIClient creates and returns a new WikiOpenAIClient configured
// with the provided parameters.
func NewWikiOpenAIClient(
	params NewWikiOpenAIClientParams,
) *WikiOpenAIClient {
	chatClient := newOpenaiClient(params.ChatURL, params.ChatKey)
	embedClient := newOpenaiClient(params.EmbeddingURL, params.EmbeddingKey)

	timeout := params.TimeoutMin
	if timeout <= 0 {
		timeout = 5
	}
	concurrency := params.MaxConcurrentRequests
	if concurrency <= 0 {
		concurrency = 4
	}

	return &WikiOpenAIClient{
		embeddingModel:  params.EmbeddingModel,
		mergeModel:      params.MergeModel,
		extractionModel: params.ExtractionModel,

		chatURL:      params.ChatURL,
		chatKey:      params.ChatKey,
		embeddingURL: params.EmbeddingURL,
		embeddingKey: params.EmbeddingKey,

		timeoutMin: timeout,
		reqLock:    semaphore.NewWeighted(concurrency),

		metricsLock: sync.Mutex{},
		metrics: ai.ModelMetrics{
			InputTokens:  0,
			OutputTokens: 0,
			TotalTokens:  0,
			DurationMs:   0,
		},

		ChatClient:      chatClient,
		EmbeddingClient: embedClient,
	}
}

func newOpenaiClient(
	baseURL string,
	apiKey string,
) *openai.Client {
	if apiKey == "" {
		return nil
	}
	options := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}

	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(options...)

	return &client
}
