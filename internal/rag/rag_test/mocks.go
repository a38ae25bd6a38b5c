package rag_test

import (
	"context"

	"motoassist/internal/domain/chatModel"
	"motoassist/internal/rag/llm"
)

// MockSearchIndex implements vectorDB.SearchIndex
type MockSearchIndex struct {
	// Control fields to simulate different behaviors
	OnSearch      func(ctx context.Context, vector []float32) ([]chatModel.SearchHit, error)
	OnEnsureIndex func(ctx context.Context) error
	OnUploadPage  func(ctx context.Context, page chatModel.IndexedPage) error
}

func (m *MockSearchIndex) Search(ctx context.Context, vector []float32) ([]chatModel.SearchHit, error) {
	if m.OnSearch != nil {
		return m.OnSearch(ctx, vector)
	}
	return []chatModel.SearchHit{
		{DocRef: "[doc1]", PageNumber: "Page_1", PageContent: "default context", ImagePath: "output_images/page_1.jpg"},
	}, nil
}

func (m *MockSearchIndex) EnsureIndex(ctx context.Context) error {
	if m.OnEnsureIndex != nil {
		return m.OnEnsureIndex(ctx)
	}
	return nil
}

func (m *MockSearchIndex) UploadPage(ctx context.Context, page chatModel.IndexedPage) error {
	if m.OnUploadPage != nil {
		return m.OnUploadPage(ctx, page)
	}
	return nil
}

type MockEmbedder struct {
	OnGetEmbedding   func(ctx context.Context, text string) ([]float32, error)
	OnBatchEmbedding func(ctx context.Context, texts []string) ([][]float32, error)
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, text)
	}
	return []float32{0.1}, nil
}

func (m *MockEmbedder) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	if m.OnBatchEmbedding != nil {
		return m.OnBatchEmbedding(ctx, texts)
	}
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = []float32{0.1}
	}
	return vectors, nil
}

// MockLLM implements llm.Provider
type MockLLM struct {
	OnComplete func(ctx context.Context, messages []llm.Message) (string, error)
}

func (m *MockLLM) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	if m.OnComplete != nil {
		return m.OnComplete(ctx, messages)
	}
	return "mocked llm response", nil
}

// MockConversationStore implements chatModel.ConversationStore
type MockConversationStore struct {
	OnSaveTurn   func(ctx context.Context, turn chatModel.ConversationTurn) error
	OnGetHistory func(ctx context.Context, userId string, threadId string) ([]chatModel.ConversationTurn, error)
	OnLastTurns  func(ctx context.Context, userId string, threadId string, n int) ([]chatModel.ConversationTurn, error)
}

func (m *MockConversationStore) SaveTurn(ctx context.Context, turn chatModel.ConversationTurn) error {
	if m.OnSaveTurn != nil {
		return m.OnSaveTurn(ctx, turn)
	}
	return nil
}

func (m *MockConversationStore) GetHistory(ctx context.Context, userId string, threadId string) ([]chatModel.ConversationTurn, error) {
	if m.OnGetHistory != nil {
		return m.OnGetHistory(ctx, userId, threadId)
	}
	return nil, nil
}

func (m *MockConversationStore) LastTurns(ctx context.Context, userId string, threadId string, n int) ([]chatModel.ConversationTurn, error) {
	if m.OnLastTurns != nil {
		return m.OnLastTurns(ctx, userId, threadId, n)
	}
	return nil, nil
}
