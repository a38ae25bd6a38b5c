package rag

import (
	"fmt"
	"strings"

	"motoassist/internal/domain/chatModel"
	"motoassist/internal/rag/llm"
)

// formatMemory renders past turns as the memory transcript, one
// "User: <req>\nBot: <res>" block per turn, oldest first.
func formatMemory(turns []chatModel.ConversationTurn) string {
	if len(turns) == 0 {
		return ""
	}
	lines := make([]string, 0, len(turns))
	for _, turn := range turns {
		lines = append(lines, fmt.Sprintf("User: %s\nBot: %s", turn.Request, turn.Response))
	}
	return strings.Join(lines, "\n")
}

// formatSearchContent renders hits as "<docRef> page <pageNumber>: <content>"
// lines, keeping the index's ranking order.
func formatSearchContent(hits []chatModel.SearchHit) string {
	lines := make([]string, 0, len(hits))
	for _, hit := range hits {
		lines = append(lines, fmt.Sprintf("%s page %s: %s", hit.DocRef, hit.PageNumber, hit.PageContent))
	}
	return strings.Join(lines, "\n")
}

// buildMessages assembles the completion request: one leading system
// persona, an optional user message carrying the memory transcript, and
// the trailing user message with question plus search results.
func buildMessages(persona string, question string, memory string, searchContent string) []llm.Message {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: persona},
	}
	if memory != "" {
		messages = append(messages, llm.Message{Role: llm.RoleUser, Content: memory})
	}
	messages = append(messages, llm.Message{
		Role:    llm.RoleUser,
		Content: fmt.Sprintf("%s\n\nSearch results:\n%s", question, searchContent),
	})
	return messages
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
