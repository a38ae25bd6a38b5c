package rag

import (
	"context"
	"fmt"
	"time"

	"motoassist/internal/config"
	"motoassist/internal/domain/chatModel"
	"motoassist/internal/metrics"
	"motoassist/internal/rag/llm"
	"motoassist/pkg/logger_i"
)

func (s *service) executeHistoryStep(ctx context.Context, log *logger_i.Logger, req AskRequest) ([]chatModel.ConversationTurn, error) {
	log.Debug("Ask", "step", "history")

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("history_lookup", time.Since(start)) }()

	memory, err := s.conversations.LastTurns(ctx, req.UserId, req.ThreadId, config.MemoryTurnCount)
	if err != nil {
		log.Error("HISTORY_FAILURE", "error", err)
		return nil, fmt.Errorf("fetching conversation history: %w", err)
	}
	return memory, nil
}

func (s *service) executeEmbeddingStep(ctx context.Context, log *logger_i.Logger, question string) ([]float32, error) {
	log.Debug("Ask", "step", "embedding")

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	vector, err := s.embedder.GetEmbedding(ctx, question)
	if err != nil {
		log.Error("EMBEDDING_FAILURE", "error", err)
		return nil, fmt.Errorf("embedding question: %w", err)
	}
	return vector, nil
}

func (s *service) executeVectorSearchStep(ctx context.Context, log *logger_i.Logger, vector []float32) ([]chatModel.SearchHit, error) {
	log.Debug("Ask", "step", "vector search")

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	hits, err := s.index.Search(ctx, vector)
	if err != nil {
		log.Error("VECTOR_DB_FAILURE", "error", err)
		return nil, fmt.Errorf("searching index: %w", err)
	}
	return hits, nil
}

func (s *service) executeLLMStep(ctx context.Context, log *logger_i.Logger, messages []llm.Message) (string, error) {
	log.Debug("Ask", "step", "completion")

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	answer, err := s.llmProvider.Complete(ctx, messages)
	if err != nil {
		log.Error("LLM_GENERATION_FAILURE", "error", err)
		return "", fmt.Errorf("generating completion: %w", err)
	}
	return answer, nil
}

func (s *service) executePersistStep(ctx context.Context, log *logger_i.Logger, req AskRequest, answer string) error {
	log.Debug("Ask", "step", "persist")

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("conversation_save", time.Since(start)) }()

	if err := s.conversations.SaveTurn(ctx, newTurn(req, answer)); err != nil {
		log.Error("STORE_FAILURE", "error", err)
		return fmt.Errorf("saving turn: %w", err)
	}
	return nil
}
