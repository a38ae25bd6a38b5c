package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"motoassist/internal/config"
	"motoassist/internal/rag/llm"
	"motoassist/pkg/logger_i"
)

type Client struct {
	genAi     *genai.Client
	modelName string
	logger    *logger_i.Logger
}

// NewProvider is the Gemini alternative behind llm.Provider, selected with
// LLM_PROVIDER=gemini.
func NewProvider(ctx context.Context, apiKey string, modelName string) (*Client, error) {
	logger := logger_i.NewLogger("llm_gemini")

	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}
	logger.Info("Gemini client created", "model", modelName)
	return &Client{genAi: c, modelName: modelName, logger: logger}, nil
}

// Complete maps the leading system message to Gemini's system instruction
// and folds the ordered user/assistant messages into one text prompt.
func (c *Client) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	log := c.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	contentConfig := &genai.GenerateContentConfig{}
	var parts []string
	for _, m := range messages {
		if m.Role == llm.RoleSystem {
			contentConfig.SystemInstruction = &genai.Content{
				Parts: []*genai.Part{{Text: m.Content}},
			}
			continue
		}
		parts = append(parts, m.Content)
	}

	result, err := c.genAi.Models.GenerateContent(
		ctx,
		c.modelName,
		genai.Text(strings.Join(parts, "\n\n")),
		contentConfig,
	)
	if err != nil {
		log.Error("Error getting completion from Gemini", "error", err)
		return "", err
	}
	return result.Text(), nil
}
