package middleware

import (
	"time"

	"github.com/inkgraph/backend/internal/util"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"

	"github.com/inkgraph/backend/pkg/ai"
	oai "github.com/inkgraph/backend/pkg/ai/ollama"
	gai "github.com/inkgraph/backend/pkg/ai/openai"
	"github.com/inkgraph/backend/pkg/logger"
)

type AppUser struct {
	UserID      int64
	Role        string
	Permissions []string
}

type App struct {
	DBConn         *pgxpool.Pool
	Queue          *amqp091.Channel
	Key            *keyfunc.Keyfunc
	S3             *s3.Client
	AiClient       ai.WikiAIClient
	MasterAPIKey   string
	MasterUserID   int64
	MasterUserRole string
}

type AppContext struct {
	echo.Context
	App  *App
	User *AppUser
}

// NewAIClientFromEnv builds the configured generation client: Ollama or an
// OpenAI-compatible endpoint, optionally wrapped in a rate-limited fallback
// chain when AI_MODEL_LIMITS is set.
func NewAIClientFromEnv() ai.WikiAIClient {
	adapter := util.GetEnv("AI_ADAPTER")
	var aiClient ai.WikiAIClient

	switch adapter {
	case "ollama":
		client, err := oai.NewWikiOllamaClient(oai.NewWikiOllamaClientParams{
			EmbeddingModel:  util.GetEnv("AI_EMBED_MODEL"),
			MergeModel:      util.GetEnv("AI_CHAT_MERGE_MODEL"),
			ExtractionModel: util.GetEnv("AI_CHAT_EXTRACT_MODEL"),

			BaseURL: util.GetEnv("AI_CHAT_URL"),
			ApiKey:  util.GetEnv("AI_CHAT_KEY"),

			MaxConcurrentRequests: int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 4)),
		})
		if err != nil {
			logger.Fatal("Failed to create Ollama client", "err", err)
		}
		aiClient = client
	default:
		aiClient = gai.NewWikiOpenAIClient(gai.NewWikiOpenAIClientParams{
			EmbeddingModel:  util.GetEnv("AI_EMBED_MODEL"),
			MergeModel:      util.GetEnv("AI_CHAT_MERGE_MODEL"),
			ExtractionModel: util.GetEnv("AI_CHAT_EXTRACT_MODEL"),

			EmbeddingURL: util.GetEnv("AI_EMBED_URL"),
			EmbeddingKey: util.GetEnv("AI_EMBED_KEY"),
			ChatURL:      util.GetEnv("AI_CHAT_URL"),
			ChatKey:      util.GetEnv("AI_CHAT_KEY"),

			MaxConcurrentRequests: int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 4)),
		})
	}

	if limits := ai.ParseModelLimits(util.GetEnvString("AI_MODEL_LIMITS", "")); len(limits) > 0 {
		aiClient = ai.NewFallbackClient(ai.NewFallbackClientParams{
			Client:                aiClient,
			Models:                limits,
			MaxConcurrentRequests: int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 4)),
			MaxWait:               time.Duration(util.GetEnvNumeric("AI_MAX_WAIT_SEC", 120)) * time.Second,
		})
	}

	return aiClient
}

func AppContextMiddleware(
	db *pgxpool.Pool,
	queue *amqp091.Channel,
	key *keyfunc.Keyfunc,
	s3Client *s3.Client,
	masterAPIKey string,
	masterUserID int64,
	masterUserRole string,
) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			app := &App{
				DBConn:         db,
				Queue:          queue,
				Key:            key,
				S3:             s3Client,
				AiClient:       NewAIClientFromEnv(),
				MasterAPIKey:   masterAPIKey,
				MasterUserID:   masterUserID,
				MasterUserRole: masterUserRole,
			}
			cc := &AppContext{c, app, nil}
			return next(cc)
		}
	}
}
