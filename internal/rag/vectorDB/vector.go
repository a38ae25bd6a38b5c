package vectorDB

import (
	"context"

	"motoassist/internal/domain/chatModel"
)

// SearchIndex is the contract against the managed vector index. Hit order
// is whatever the index returned; callers must not re-sort.
type SearchIndex interface {
	// Search runs a nearest-neighbor query and returns at most the
	// configured hit count, labelled [doc1], [doc2], ... in index order.
	Search(ctx context.Context, vector []float32) ([]chatModel.SearchHit, error)

	// EnsureIndex creates the index when absent; it is a no-op otherwise.
	EnsureIndex(ctx context.Context) error

	// UploadPage stores one page document. Callers report failures per page
	// and never roll back earlier uploads.
	UploadPage(ctx context.Context, page chatModel.IndexedPage) error
}
