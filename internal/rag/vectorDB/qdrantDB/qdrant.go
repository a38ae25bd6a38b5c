package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"

	"motoassist/internal/config"
	"motoassist/internal/domain/chatModel"
	"motoassist/pkg/logger_i"
)

// manual pages can be large; lift the default grpc receive cap
const maxRecvMsgSize = 32 << 20

type Config struct {
	Host           string
	Port           int
	CollectionName string
	Dimension      int
}

type Index struct {
	client         *qdrant.Client
	collectionName string
	dimension      uint64
	logger         *logger_i.Logger
}

// NewIndex dials Qdrant and returns a page index bound to one collection.
// The caller owns the lifecycle; Close on shutdown.
func NewIndex(ctx context.Context, cfg Config) (*Index, error) {
	logger := logger_i.NewLogger("Qdrant")

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
		GrpcOptions: []grpc.DialOption{
			grpc.WithDefaultCallOptions(grpc.MaxCallRecvMsgSize(maxRecvMsgSize)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("could not instantiate qdrant client: %w", err)
	}

	idx := &Index{
		client:         client,
		collectionName: cfg.CollectionName,
		dimension:      uint64(cfg.Dimension),
		logger:         logger,
	}

	go func() {
		<-ctx.Done()
		logger.Info("Shutting down Qdrant")
		if err := client.Close(); err != nil {
			logger.Error("could not close Qdrant: ", "error:", err)
		}
	}()

	return idx, nil
}

// Search queries by vector only, requesting just the page_number and
// page_content payload fields. Hits keep the index's own ranking and get
// 1-based doc labels in that order.
func (db *Index) Search(ctx context.Context, vectorFloat []float32) ([]chatModel.SearchHit, error) {
	loggr := db.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	result, err := db.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: db.collectionName,
		Query:          qdrant.NewQuery(vectorFloat...),
		Limit:          qdrant.PtrOf(uint64(config.NearestNeighborCount)),
		WithPayload:    qdrant.NewWithPayloadInclude("page_number", "page_content"),
	})
	if err != nil {
		loggr.Error("Error querying Qdrant: ", "error:", err)
		return nil, err
	}

	hits := toSearchHits(result)
	loggr.Debug("Found hits", "count", len(hits))
	return hits, nil
}

// toSearchHits maps scored points to hits, preserving the index's ranking
// and labelling them [doc1], [doc2], ... in that order.
func toSearchHits(points []*qdrant.ScoredPoint) []chatModel.SearchHit {
	hits := make([]chatModel.SearchHit, 0, len(points))
	for i, point := range points {
		pageNumber := point.Payload["page_number"].GetStringValue()
		hits = append(hits, chatModel.SearchHit{
			DocRef:      fmt.Sprintf("[doc%d]", i+1),
			PageNumber:  pageNumber,
			PageContent: point.Payload["page_content"].GetStringValue(),
			Score:       point.Score,
			ImagePath:   ImagePathFor(pageNumber),
		})
	}
	return hits
}

// ImagePathFor derives the illustration path for a page label. Pure naming
// convention; nothing checks the file exists.
func ImagePathFor(pageNumber string) string {
	return config.ImageDirPrefix + "/" + strings.ToLower(pageNumber) + config.ImageExtension
}

// EnsureIndex creates the page collection when absent: cosine distance over
// the configured dimension with an HNSW graph, plus payload indexes so
// page_content stays text-searchable and page_number filterable.
func (db *Index) EnsureIndex(ctx context.Context) error {
	if db.collectionName == "" {
		return errors.New("empty collection name")
	}

	exists, err := db.client.CollectionExists(ctx, db.collectionName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	err = db.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: db.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     db.dimension,
			Distance: qdrant.Distance_Cosine,
			HnswConfig: &qdrant.HnswConfigDiff{
				M:           qdrant.PtrOf(uint64(16)),
				EfConstruct: qdrant.PtrOf(uint64(100)),
			},
		}),
	})
	if err != nil {
		return fmt.Errorf("creating collection %q: %w", db.collectionName, err)
	}

	payloadIndexes := map[string]qdrant.FieldType{
		"page_content": qdrant.FieldType_FieldTypeText,
		"page_number":  qdrant.FieldType_FieldTypeKeyword,
	}
	for field, fieldType := range payloadIndexes {
		_, err := db.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: db.collectionName,
			FieldName:      field,
			FieldType:      &fieldType,
			Wait:           qdrant.PtrOf(true),
		})
		if err != nil {
			return fmt.Errorf("creating payload index on %q: %w", field, err)
		}
	}

	db.logger.Info("Created collection", "collectionName", db.collectionName, "dimension", db.dimension)
	return nil
}

func (db *Index) UploadPage(ctx context.Context, page chatModel.IndexedPage) error {
	if len(page.Vector) != int(db.dimension) {
		return fmt.Errorf("vector dimension mismatch: got %d, index expects %d", len(page.Vector), db.dimension)
	}

	_, err := db.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: db.collectionName,
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewID(page.Id),
				Vectors: qdrant.NewVectors(page.Vector...),
				Payload: qdrant.NewValueMap(map[string]any{
					"page_number":  page.PageNumber,
					"page_content": page.PageContent,
				}),
			},
		},
		Wait: qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}
