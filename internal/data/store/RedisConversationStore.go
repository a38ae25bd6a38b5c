package store

import (
	"context"
	"encoding/json"
	"fmt"

	"motoassist/internal/config"
	"motoassist/internal/data/redisStore"
	"motoassist/internal/domain/chatModel"
	"motoassist/pkg/logger_i"
)

// RedisConversationStore keeps the flat conversation shape: one JSON record
// per turn, appended to a per-user list. Appends are atomic on the server,
// so concurrent turns for one user cannot drop each other.
type RedisConversationStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisConversationStore(ctx context.Context, addr string, password string) *RedisConversationStore {
	inner := redisStore.GetRedisStore(ctx, addr, password, config.RedisConversationStore)
	if inner == nil {
		return nil
	}
	return &RedisConversationStore{
		store:  inner,
		logger: logger_i.NewLogger("ConversationStore"),
	}
}

func conversationKey(userId string) string {
	return "chat:" + userId
}

func (s *RedisConversationStore) SaveTurn(ctx context.Context, turn chatModel.ConversationTurn) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "user Id", turn.UserId)

	data, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("marshalling turn: %w", err)
	}
	if err := s.store.ListPush(ctx, conversationKey(turn.UserId), data); err != nil {
		log.Error("error saving turn", "error:", err)
		return err
	}
	log.Debug("Saved turn successfully")
	return nil
}

// GetHistory returns the user's turns most-recent-first, optionally limited
// to one thread. A user with no history gets an empty slice.
func (s *RedisConversationStore) GetHistory(ctx context.Context, userId string, threadId string) ([]chatModel.ConversationTurn, error) {
	turns, err := s.chronological(ctx, userId, threadId)
	if err != nil {
		return nil, err
	}
	reverseTurns(turns)
	return turns, nil
}

func (s *RedisConversationStore) LastTurns(ctx context.Context, userId string, threadId string, n int) ([]chatModel.ConversationTurn, error) {
	turns, err := s.chronological(ctx, userId, threadId)
	if err != nil {
		return nil, err
	}
	return tailTurns(turns, n), nil
}

func (s *RedisConversationStore) chronological(ctx context.Context, userId string, threadId string) ([]chatModel.ConversationTurn, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "user Id", userId)

	raw, err := s.store.ListGetAll(ctx, conversationKey(userId))
	if err != nil {
		log.Error("Error getting history", "error:", err)
		return nil, err
	}

	turns := make([]chatModel.ConversationTurn, 0, len(raw))
	for _, entry := range raw {
		var turn chatModel.ConversationTurn
		if err := json.Unmarshal([]byte(entry), &turn); err != nil {
			log.Error("Skipping corrupt turn record", "error", err)
			continue
		}
		if threadId != "" && turn.ThreadId != threadId {
			continue
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

func reverseTurns(turns []chatModel.ConversationTurn) {
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
}

func tailTurns(turns []chatModel.ConversationTurn, n int) []chatModel.ConversationTurn {
	if n <= 0 || len(turns) <= n {
		return turns
	}
	return turns[len(turns)-n:]
}

// TestConversationStore wires a miniredis-backed store for tests.
func TestConversationStore(store *redisStore.Store) *RedisConversationStore {
	return &RedisConversationStore{
		store:  store,
		logger: logger_i.NewLogger("test conversation store"),
	}
}
