package rag

import (
	"testing"

	"motoassist/internal/domain/chatModel"
	"motoassist/internal/rag/llm"
)

func TestFormatMemory(t *testing.T) {
	if got := formatMemory(nil); got != "" {
		t.Errorf("empty history should render empty, got %q", got)
	}

	turns := []chatModel.ConversationTurn{
		{Request: "hello", Response: "hi there"},
		{Request: "next", Response: "sure"},
	}
	want := "User: hello\nBot: hi there\nUser: next\nBot: sure"
	if got := formatMemory(turns); got != want {
		t.Errorf("formatMemory got %q, want %q", got, want)
	}
}

func TestFormatSearchContent_KeepsRankingOrder(t *testing.T) {
	hits := []chatModel.SearchHit{
		{DocRef: "[doc1]", PageNumber: "Page_4", PageContent: "clutch adjustment"},
		{DocRef: "[doc2]", PageNumber: "Page_11", PageContent: "clutch removal"},
	}
	want := "[doc1] page Page_4: clutch adjustment\n[doc2] page Page_11: clutch removal"
	if got := formatSearchContent(hits); got != want {
		t.Errorf("formatSearchContent got %q, want %q", got, want)
	}
}

func TestBuildMessages(t *testing.T) {
	messages := buildMessages("persona", "question?", "memory block", "search block")

	if len(messages) != 3 {
		t.Fatalf("got %d messages, want 3", len(messages))
	}
	if messages[0].Role != llm.RoleSystem {
		t.Errorf("first message role got %s, want %s", messages[0].Role, llm.RoleSystem)
	}
	if messages[1].Content != "memory block" {
		t.Errorf("memory message got %q", messages[1].Content)
	}
	if messages[2].Content != "question?\n\nSearch results:\nsearch block" {
		t.Errorf("final message got %q", messages[2].Content)
	}

	// no memory message when the transcript is empty
	messages = buildMessages("persona", "question?", "", "search block")
	if len(messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(messages))
	}
}

func TestWordCount(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"   ", 0},
		{"one", 1},
		{"several words\nacross lines\t here", 5},
	}
	for _, tt := range tests {
		if got := wordCount(tt.text); got != tt.want {
			t.Errorf("wordCount(%q) = %d; want %d", tt.text, got, tt.want)
		}
	}
}
