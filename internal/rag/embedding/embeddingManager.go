package embedding

import "context"

// Embedder turns text into a fixed-length vector. No local caching, no
// retries beyond what the SDK transport does.
type Embedder interface {
	GetEmbedding(ctx context.Context, text string) ([]float32, error)
	BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}
