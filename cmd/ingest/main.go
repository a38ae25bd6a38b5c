// Command ingest indexes a single document from the command line, without
// going through the HTTP upload path. Useful for seeding a fresh collection.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"motoassist/internal/config"
	"motoassist/internal/domain/jobModel"
	"motoassist/internal/rag/embedding"
	azureembedding "motoassist/internal/rag/embedding/azureEmbedding"
	googleembedding "motoassist/internal/rag/embedding/googleEmbedding"
	"motoassist/internal/rag/ingest"
	"motoassist/internal/rag/vectorDB/qdrantDB"
	"motoassist/pkg/logger_i"

	"github.com/google/uuid"
)

func main() {
	logger_i.Init()
	logger := logger_i.NewLogger("ingest-cli")

	var filePath string
	flag.StringVar(&filePath, "file", "", "path to the document to index (pdf, docx or txt)")
	flag.Parse()

	if filePath == "" {
		fmt.Fprintln(os.Stderr, "usage: ingest -file <document>")
		os.Exit(2)
	}
	if _, err := os.Stat(filePath); err != nil {
		logger.Error("Cannot read document", "path", filePath, "error", err)
		os.Exit(1)
	}

	settings, err := config.Load()
	if err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	index, err := qdrantDB.NewIndex(ctx, qdrantDB.Config{
		Host:           settings.QdrantHost,
		Port:           settings.QdrantPort,
		CollectionName: settings.SearchIndexName,
		Dimension:      settings.EmbeddingDimensions,
	})
	if err != nil {
		logger.Error("Failed to connect to vector database", "error", err)
		os.Exit(1)
	}

	var embedder embedding.Embedder
	if settings.Provider == config.ProviderGemini {
		embedder, err = googleembedding.NewEmbedder(ctx, settings.GeminiAPIKey, settings.GeminiEmbeddingModel, settings.EmbeddingDimensions)
		if err != nil {
			logger.Error("Failed to initialize Gemini embedding client", "error", err)
			os.Exit(1)
		}
	} else {
		embedder = azureembedding.NewEmbedder(settings.AzureOpenAIEndpoint, settings.AzureOpenAIAPIKey, settings.EmbeddingModel, settings.EmbeddingDimensions)
	}

	job := jobModel.Job{
		Id:          uuid.New().String(),
		FileName:    filepath.Base(filePath),
		FilePath:    filePath,
		RemoveAfter: false,
		CreatedTime: time.Now().UTC(),
		Status:      jobModel.JobStatusRunning,
		CurrentStep: jobModel.IngestInit,
	}

	result := ingest.ProcessDocumentIngestion(ctx, job, embedder, index)

	if result.Status == jobModel.JobStatusError {
		logger.Error("Ingestion failed", "file", result.FileName, "error", result.Error.Message)
		fmt.Printf("FAILED   %s: %s\n", result.FileName, result.Error.Message)
		os.Exit(1)
	}

	fmt.Printf("COMPLETE %s: %d pages indexed, %d pages failed\n",
		result.FileName, result.PagesUploaded, result.PagesFailed)
}
