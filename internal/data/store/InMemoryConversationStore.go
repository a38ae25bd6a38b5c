package store

import (
	"context"
	"sync"

	"motoassist/internal/domain/chatModel"
	"motoassist/pkg/logger_i"
)

// InMemoryConversationStore is the fallback when redis is offline. Same
// flat shape, same ordering contract.
type InMemoryConversationStore struct {
	chatLock *sync.RWMutex
	chatMap  map[string][]chatModel.ConversationTurn
	logger   *logger_i.Logger
}

func InitConversationStore() *InMemoryConversationStore {
	return &InMemoryConversationStore{
		chatLock: new(sync.RWMutex),
		chatMap:  make(map[string][]chatModel.ConversationTurn),
		logger:   logger_i.NewLogger("InMem ConversationStore"),
	}
}

func (store *InMemoryConversationStore) SaveTurn(ctx context.Context, turn chatModel.ConversationTurn) error {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	store.chatMap[turn.UserId] = append(store.chatMap[turn.UserId], turn)
	return nil
}

func (store *InMemoryConversationStore) GetHistory(ctx context.Context, userId string, threadId string) ([]chatModel.ConversationTurn, error) {
	turns := store.chronological(userId, threadId)
	reverseTurns(turns)
	return turns, nil
}

func (store *InMemoryConversationStore) LastTurns(ctx context.Context, userId string, threadId string, n int) ([]chatModel.ConversationTurn, error) {
	return tailTurns(store.chronological(userId, threadId), n), nil
}

func (store *InMemoryConversationStore) chronological(userId string, threadId string) []chatModel.ConversationTurn {
	store.chatLock.RLock()
	defer store.chatLock.RUnlock()

	turns := make([]chatModel.ConversationTurn, 0, len(store.chatMap[userId]))
	for _, turn := range store.chatMap[userId] {
		if threadId != "" && turn.ThreadId != threadId {
			continue
		}
		turns = append(turns, turn)
	}
	return turns
}
