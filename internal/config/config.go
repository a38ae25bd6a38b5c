package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	TRACE_ID_KEY   = "traceId"

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	// retrieval contract: the index always returns at most this many hits
	NearestNeighborCount = 3

	// prompt memory never carries more than this many past turns
	MemoryTurnCount = 5

	// the response payload carries image paths only above this word count
	ImageWordThreshold = 160

	// hit image paths are a naming convention, never checked on disk
	ImageDirPrefix = "output_images"
	ImageExtension = ".jpg"

	DefaultEmbeddingDimensions = 1536
	AzureOpenAIAPIVersion      = "2024-06-01"

	// one /ask request gets this long end to end
	AskRequestTimeout = 60 * time.Second

	//serverTimeouts
	// WriteTimeout must stay above AskRequestTimeout: a completion that
	// lands inside the ask budget has already persisted its turn, and
	// cutting the connection then makes the client retry and duplicate it.
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 90 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	ServerListenAddr = ":5000"

	//ingest job requests buffer limit
	BufferLimit = 100

	MaxUploadBytes int64 = 64 << 20

	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute

	//vectorDB
	QdrantConnectionTimeout = 30 * time.Second
	QdrantUseTLS            = false
	QdrantPoolSize          = 1
	DefaultQdrantGrpcPort   = 6334

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis
	DefaultRedisAddr = "127.0.0.1:6379"

	//redis has 16 DB we can use
	RedisJobStore          = 0
	RedisConversationStore = 1

	RedisJobStoreTTL = 24 * time.Hour

	ProviderAzure  = "azure"
	ProviderGemini = "gemini"
)

// Settings holds everything read from the environment at process start.
// Immutable after Load.
type Settings struct {
	ListenAddr string

	Provider string

	AzureOpenAIEndpoint       string
	AzureOpenAIAPIKey         string
	ChatCompletionsDeployment string
	EmbeddingModel            string
	EmbeddingDimensions       int

	GeminiAPIKey         string
	GeminiModelName      string
	GeminiEmbeddingModel string

	SearchIndexName string
	QdrantHost      string
	QdrantPort      int

	RedisAddr     string
	RedisPassword string

	AuthToken    string
	SystemPrompt string
}

// Load reads the process configuration and fails fast on any missing
// required setting. A .env file is honored when present.
func Load() (*Settings, error) {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Overload(".env")
	}

	s := &Settings{
		ListenAddr:                getEnvDefault("PORT_ADDR", ServerListenAddr),
		Provider:                  strings.ToLower(getEnvDefault("LLM_PROVIDER", ProviderAzure)),
		AzureOpenAIEndpoint:       os.Getenv("AZURE_OPENAI_ENDPOINT"),
		AzureOpenAIAPIKey:         os.Getenv("AZURE_OPENAI_API_KEY"),
		ChatCompletionsDeployment: os.Getenv("AZURE_OPENAI_CHAT_COMPLETIONS_DEPLOYMENT_NAME"),
		EmbeddingModel:            os.Getenv("AZURE_OPENAI_EMBEDDING_MODEL"),
		GeminiAPIKey:              os.Getenv("GEMINI_API_KEY"),
		GeminiModelName:           getEnvDefault("GEMINI_MODEL_NAME", "gemini-2.5-flash"),
		GeminiEmbeddingModel:      getEnvDefault("GEMINI_EMBEDDING_MODEL", "gemini-embedding-001"),
		SearchIndexName:           os.Getenv("SEARCH_INDEX_NAME"),
		QdrantHost:                os.Getenv("QDRANT_HOST"),
		RedisAddr:                 getEnvDefault("REDIS_ADDR", DefaultRedisAddr),
		RedisPassword:             os.Getenv("REDIS_PASSWORD"),
		AuthToken:                 os.Getenv("API_AUTH_TOKEN"),
	}

	if port := os.Getenv("PORT"); port != "" {
		s.ListenAddr = ":" + port
	}

	dims, err := intEnvDefault("EMBEDDING_VECTOR_DIMENSIONS", DefaultEmbeddingDimensions)
	if err != nil {
		return nil, err
	}
	s.EmbeddingDimensions = dims

	qdrantPort, err := intEnvDefault("QDRANT_PORT", DefaultQdrantGrpcPort)
	if err != nil {
		return nil, err
	}
	s.QdrantPort = qdrantPort

	s.SystemPrompt, err = loadSystemPrompt(os.Getenv("SYSTEM_PROMPT_FILE"))
	if err != nil {
		return nil, err
	}

	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) validate() error {
	var missing []string

	require := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}

	require("SEARCH_INDEX_NAME", s.SearchIndexName)
	require("QDRANT_HOST", s.QdrantHost)

	switch s.Provider {
	case ProviderAzure:
		require("AZURE_OPENAI_ENDPOINT", s.AzureOpenAIEndpoint)
		require("AZURE_OPENAI_API_KEY", s.AzureOpenAIAPIKey)
		require("AZURE_OPENAI_CHAT_COMPLETIONS_DEPLOYMENT_NAME", s.ChatCompletionsDeployment)
		require("AZURE_OPENAI_EMBEDDING_MODEL", s.EmbeddingModel)
	case ProviderGemini:
		require("GEMINI_API_KEY", s.GeminiAPIKey)
	default:
		return fmt.Errorf("config: unknown LLM_PROVIDER %q", s.Provider)
	}

	if len(missing) > 0 {
		return fmt.Errorf("config: missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

func loadSystemPrompt(path string) (string, error) {
	if path == "" {
		return DefaultSystemPrompt, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("config: reading SYSTEM_PROMPT_FILE: %w", err)
	}
	return string(data), nil
}

func getEnvDefault(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func intEnvDefault(name string, fallback int) (int, error) {
	v := os.Getenv(name)
	if v == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s must be an integer, got %q", name, v)
	}
	return parsed, nil
}
