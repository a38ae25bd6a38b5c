// @title           Manual Assistant API
// @version         1.0
// @description     Retrieval-augmented chat over an indexed repair manual.
// @termsOfService  http://swagger.io/terms/

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:5000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"motoassist/internal/config"
	"motoassist/internal/data/store"
	"motoassist/internal/domain/chatModel"
	jobmodel "motoassist/internal/domain/jobModel"
	"motoassist/internal/handlers"
	"motoassist/internal/job"
	"motoassist/internal/middleware"
	"motoassist/internal/rag"
	"motoassist/internal/rag/embedding"
	azureembedding "motoassist/internal/rag/embedding/azureEmbedding"
	googleembedding "motoassist/internal/rag/embedding/googleEmbedding"
	"motoassist/internal/rag/llm"
	"motoassist/internal/rag/llm/azureLLM"
	"motoassist/internal/rag/llm/gemini"
	"motoassist/internal/rag/vectorDB/qdrantDB"
	"motoassist/internal/server"
	"motoassist/internal/worker"
	"motoassist/pkg/logger_i"
)

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	settings, err := config.Load()
	if err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	flag.StringVar(&listenAddr, "listen-addr", settings.ListenAddr, "server listen address")
	flag.Parse()

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//init job service and job store
	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
	}
	logger.Info("Starting job service")

	if redisJobs := store.GetRedisJobStore(serviceContext, settings.RedisAddr, settings.RedisPassword); redisJobs != nil {
		serviceConfig.JobStore = redisJobs
	} else {
		logger.Error("Redis job store is offline, using in-memory store")
		serviceConfig.JobStore = store.InitInMemoryJobStore()
	}
	jobService := job.InitJobService(serviceConfig)

	var conversations chatModel.ConversationStore
	if redisConversations := store.GetRedisConversationStore(serviceContext, settings.RedisAddr, settings.RedisPassword); redisConversations != nil {
		conversations = redisConversations
	} else {
		logger.Error("Redis conversation store is offline, using in-memory store")
		conversations = store.InitConversationStore()
	}

	vectorIndex, err := qdrantDB.NewIndex(serviceContext, qdrantDB.Config{
		Host:           settings.QdrantHost,
		Port:           settings.QdrantPort,
		CollectionName: settings.SearchIndexName,
		Dimension:      settings.EmbeddingDimensions,
	})
	if err != nil {
		logger.Error("Failed to connect to vector database", "error", err)
		os.Exit(1)
	}

	var embeddingService embedding.Embedder
	var llmProvider llm.Provider

	switch settings.Provider {
	case config.ProviderGemini:
		embeddingService, err = googleembedding.NewEmbedder(serviceContext, settings.GeminiAPIKey, settings.GeminiEmbeddingModel, settings.EmbeddingDimensions)
		if err != nil {
			logger.Error("Failed to initialize Gemini embedding client", "error", err)
			os.Exit(1)
		}
		llmProvider, err = gemini.NewProvider(serviceContext, settings.GeminiAPIKey, settings.GeminiModelName)
		if err != nil {
			logger.Error("Failed to initialize Gemini provider", "error", err)
			os.Exit(1)
		}
	default:
		embeddingService = azureembedding.NewEmbedder(settings.AzureOpenAIEndpoint, settings.AzureOpenAIAPIKey, settings.EmbeddingModel, settings.EmbeddingDimensions)
		llmProvider = azureLLM.NewProvider(settings.AzureOpenAIEndpoint, settings.AzureOpenAIAPIKey, settings.ChatCompletionsDeployment)
	}

	ragService := rag.NewService(vectorIndex, llmProvider, embeddingService, conversations, settings.SystemPrompt)

	chatHandler := handlers.NewChatHandler(ragService, conversations, jobService)
	chain := middleware.NewChain(settings.AuthToken)

	//init worker pool
	worker.InitServices(jobService, ragService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr, chatHandler, chain)

	<-stopExecution
	logger.Info("Server stopped")
}
