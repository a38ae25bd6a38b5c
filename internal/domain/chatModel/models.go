package chatModel

import (
	"context"
	"time"
)

// ConversationTurn is one question/answer exchange. Turns are immutable
// once written and are never deleted by this service.
type ConversationTurn struct {
	Id        string    `json:"id"`
	UserId    string    `json:"user_id"`
	ThreadId  string    `json:"thread_id,omitempty"`
	Request   string    `json:"req"`
	Response  string    `json:"res"`
	Timestamp time.Time `json:"timestamp"`
}

// IndexedPage is one retrievable unit of manual knowledge: a full extracted
// page, unchunked, with its embedding.
type IndexedPage struct {
	Id          string    `json:"id"`
	PageNumber  string    `json:"page_number"`
	PageContent string    `json:"page_content"`
	Vector      []float32 `json:"vector"`
}

// SearchHit is request-scoped: it is derived from one vector query result
// and discarded after the response is sent.
type SearchHit struct {
	DocRef      string  `json:"doc_ref"`
	PageNumber  string  `json:"page_number"`
	PageContent string  `json:"page_content"`
	Score       float32 `json:"score"`
	ImagePath   string  `json:"image_path"`
}

// ConversationStore persists turns keyed by user. An unknown user id is an
// empty history, never an error. ThreadId filters when non-empty.
type ConversationStore interface {
	// SaveTurn appends a completed turn. Appends for the same user must not
	// lose each other under concurrency.
	SaveTurn(ctx context.Context, turn ConversationTurn) error

	// GetHistory returns the user's turns most-recent-first.
	GetHistory(ctx context.Context, userId string, threadId string) ([]ConversationTurn, error)

	// LastTurns returns up to n most recent turns in chronological order,
	// for prompt memory.
	LastTurns(ctx context.Context, userId string, threadId string, n int) ([]ConversationTurn, error)
}
