package azureLLM

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"
	"github.com/openai/openai-go/option"

	"motoassist/internal/config"
	"motoassist/internal/customHttpClient"
	"motoassist/internal/rag/llm"
	"motoassist/pkg/logger_i"
)

type Client struct {
	openai     openai.Client
	deployment string
	logger     *logger_i.Logger
}

// NewProvider wires the Azure OpenAI chat completions deployment.
func NewProvider(endpoint string, apiKey string, deployment string) *Client {
	return &Client{
		openai: openai.NewClient(
			azure.WithEndpoint(endpoint, config.AzureOpenAIAPIVersion),
			azure.WithAPIKey(apiKey),
			option.WithHTTPClient(customHttpClient.Pooled()),
		),
		deployment: deployment,
		logger:     logger_i.NewLogger("llm_azure"),
	}
}

func (c *Client) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	log := c.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.deployment),
		Messages: make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)),
	}
	for _, m := range messages {
		switch m.Role {
		case llm.RoleSystem:
			params.Messages = append(params.Messages, openai.SystemMessage(m.Content))
		case llm.RoleAssistant:
			params.Messages = append(params.Messages, openai.AssistantMessage(m.Content))
		case llm.RoleUser:
			params.Messages = append(params.Messages, openai.UserMessage(m.Content))
		default:
			return "", fmt.Errorf("unknown message role %q", m.Role)
		}
	}

	resp, err := c.openai.Chat.Completions.New(ctx, params)
	if err != nil {
		log.Error("Error getting completion from Azure OpenAI", "error", err)
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion response carried no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
