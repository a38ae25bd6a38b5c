package rag

import (
	"context"
	"time"

	"github.com/google/uuid"

	"motoassist/internal/config"
	"motoassist/internal/domain/chatModel"
	"motoassist/internal/domain/jobModel"
	"motoassist/internal/metrics"
	"motoassist/internal/rag/embedding"
	"motoassist/internal/rag/ingest"
	"motoassist/internal/rag/llm"
	"motoassist/internal/rag/vectorDB"
	"motoassist/pkg/logger_i"
)

type AskRequest struct {
	UserId   string
	ThreadId string
	Question string
}

type AskResult struct {
	Response string
	Images   []string
}

// Service is the request orchestrator. Handlers only see this contract;
// the external clients behind it are injected so tests can swap in fakes.
type Service interface {
	// Ask runs one synchronous chat request: fetch memory, embed, search,
	// build the prompt, complete, persist the turn. Any step's failure
	// short-circuits; nothing is persisted before the completion succeeds.
	Ask(ctx context.Context, req AskRequest) (AskResult, error)

	// IngestDocument runs one ingestion job to completion.
	IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job
}

type service struct {
	index         vectorDB.SearchIndex
	llmProvider   llm.Provider
	embedder      embedding.Embedder
	conversations chatModel.ConversationStore
	persona       string
	logger        *logger_i.Logger
}

// NewService constructor
func NewService(index vectorDB.SearchIndex, llmProvider llm.Provider, em embedding.Embedder, conversations chatModel.ConversationStore, persona string) Service {
	return &service{
		index:         index,
		llmProvider:   llmProvider,
		embedder:      em,
		conversations: conversations,
		persona:       persona,
		logger:        logger_i.NewLogger("RAG Service"),
	}
}

func (s *service) Ask(ctx context.Context, req AskRequest) (AskResult, error) {
	inMethodLogger := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "userId", req.UserId)

	start := time.Now()
	status := "ok"
	defer func() { metrics.CaptureAskMetrics(status, time.Since(start)) }()

	processContext, cancel := context.WithTimeout(ctx, config.AskRequestTimeout)
	defer cancel()

	memory, err := s.executeHistoryStep(processContext, inMethodLogger, req)
	if err != nil {
		status = "history_failure"
		return AskResult{}, err
	}

	vector, err := s.executeEmbeddingStep(processContext, inMethodLogger, req.Question)
	if err != nil {
		status = "embedding_failure"
		return AskResult{}, err
	}

	hits, err := s.executeVectorSearchStep(processContext, inMethodLogger, vector)
	if err != nil {
		status = "vector_db_failure"
		return AskResult{}, err
	}

	messages := buildMessages(s.persona, req.Question, formatMemory(memory), formatSearchContent(hits))

	answer, err := s.executeLLMStep(processContext, inMethodLogger, messages)
	if err != nil {
		status = "llm_failure"
		return AskResult{}, err
	}

	if err := s.executePersistStep(processContext, inMethodLogger, req, answer); err != nil {
		status = "store_failure"
		return AskResult{}, err
	}

	return AskResult{
		Response: answer,
		Images:   imagePaths(answer, hits),
	}, nil
}

// imagePaths applies the presentation heuristic: illustration paths ride
// along only when the answer is long enough, one per hit in hit order.
func imagePaths(answer string, hits []chatModel.SearchHit) []string {
	images := make([]string, 0, len(hits))
	if wordCount(answer) <= config.ImageWordThreshold {
		return images
	}
	for _, hit := range hits {
		images = append(images, hit.ImagePath)
	}
	return images
}

func (s *service) IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_ingestion", time.Since(start)) }()
	return ingest.ProcessDocumentIngestion(ctx, job, s.embedder, s.index)
}

func newTurn(req AskRequest, answer string) chatModel.ConversationTurn {
	return chatModel.ConversationTurn{
		Id:        uuid.New().String(),
		UserId:    req.UserId,
		ThreadId:  req.ThreadId,
		Request:   req.Question,
		Response:  answer,
		Timestamp: time.Now().UTC(),
	}
}
