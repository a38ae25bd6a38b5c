package azureEmbedding

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"
	"github.com/openai/openai-go/option"

	"motoassist/internal/config"
	"motoassist/internal/customHttpClient"
	"motoassist/pkg/logger_i"
)

type Client struct {
	openai    openai.Client
	model     string
	dimension int
	logger    *logger_i.Logger
}

// NewEmbedder wires the Azure OpenAI embeddings deployment. model is the
// deployment name, dimension the index's configured vector size.
func NewEmbedder(endpoint string, apiKey string, model string, dimension int) *Client {
	return &Client{
		openai: openai.NewClient(
			azure.WithEndpoint(endpoint, config.AzureOpenAIAPIVersion),
			azure.WithAPIKey(apiKey),
			option.WithHTTPClient(customHttpClient.Pooled()),
		),
		model:     model,
		dimension: dimension,
		logger:    logger_i.NewLogger("azure_embedding"),
	}
}

func (c *Client) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	log := c.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	resp, err := c.openai.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
		Model: openai.EmbeddingModel(c.model),
	})
	if err != nil {
		log.Error("Error getting embedding from Azure OpenAI", "error", err)
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding response carried no data")
	}

	vector := toFloat32(resp.Data[0].Embedding)
	if len(vector) != c.dimension {
		return nil, fmt.Errorf("embedding dimension mismatch: got %d, want %d", len(vector), c.dimension)
	}
	return vector, nil
}

func (c *Client) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	log := c.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	resp, err := c.openai.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model: openai.EmbeddingModel(c.model),
	})
	if err != nil {
		log.Error("Error getting batch embeddings from Azure OpenAI", "error", err)
		return nil, err
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding batch mismatch: sent %d texts, got %d vectors", len(texts), len(resp.Data))
	}

	vectors := make([][]float32, len(resp.Data))
	for i, item := range resp.Data {
		vectors[i] = toFloat32(item.Embedding)
	}
	return vectors, nil
}

func toFloat32(values []float64) []float32 {
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out
}
