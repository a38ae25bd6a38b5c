package googleEmbedding

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"motoassist/internal/config"
	"motoassist/pkg/logger_i"
)

// Client is the Gemini alternative behind embedding.Embedder, selected with
// LLM_PROVIDER=gemini.
type Client struct {
	genAi     *genai.Client
	model     string
	dimension int32
	logger    *logger_i.Logger
}

func NewEmbedder(ctx context.Context, apiKey string, model string, dimension int) (*Client, error) {
	logger := logger_i.NewLogger("google_embedding")

	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("creating Google embedding client: %w", err)
	}
	logger.Info("Google Embedding client created", "model", model)
	return &Client{
		genAi:     c,
		model:     model,
		dimension: int32(dimension),
		logger:    logger,
	}, nil
}

func (c *Client) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	log := c.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	result, err := c.genAi.Models.EmbedContent(ctx, c.model, genai.Text(text),
		&genai.EmbedContentConfig{OutputDimensionality: &c.dimension, TaskType: "RETRIEVAL_DOCUMENT"})
	if err != nil {
		log.Error("Error getting embedding from Google", "error", err.Error())
		return nil, err
	}
	if len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("embedding response carried no data")
	}
	return ensureDimension(result.Embeddings[0].Values, c.dimension)
}

func (c *Client) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	log := c.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	result, err := c.genAi.Models.EmbedContent(ctx, c.model, contents,
		&genai.EmbedContentConfig{OutputDimensionality: &c.dimension, TaskType: "RETRIEVAL_DOCUMENT"})
	if err != nil {
		log.Error("Error getting batch embeddings from Google", "error", err.Error())
		return nil, err
	}
	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding batch mismatch: sent %d texts, got %d vectors", len(texts), len(result.Embeddings))
	}

	vectors := make([][]float32, len(result.Embeddings))
	for i, r := range result.Embeddings {
		vector, err := ensureDimension(r.Values, c.dimension)
		if err != nil {
			return nil, err
		}
		vectors[i] = vector
	}
	return vectors, nil
}

// the OutputDimensionality request parameter is advisory for some models;
// never hand an off-size vector to the index
func ensureDimension(values []float32, want int32) ([]float32, error) {
	if len(values) != int(want) {
		return nil, fmt.Errorf("embedding dimension mismatch: got %d, want %d", len(values), want)
	}
	return values, nil
}
