package llm

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged entry of the completion request, in order.
type Message struct {
	Role    string
	Content string
}

// Provider runs a chat completion over an ordered message sequence and
// returns the full generated text. No streaming.
type Provider interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}
