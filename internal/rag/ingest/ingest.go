package ingest

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/google/uuid"

	"motoassist/internal/config"
	"motoassist/internal/domain/chatModel"
	"motoassist/internal/domain/jobModel"
	"motoassist/internal/rag/embedding"
	"motoassist/internal/rag/vectorDB"
	"motoassist/pkg/logger_i"
)

var logger = logger_i.NewLogger("Document Ingestion")

// pages embedded per upstream call
const embedBatchSize = 16

// ProcessDocumentIngestion runs one document end to end: ensure the index
// exists, extract one text block per page in reading order, embed each full
// page, and upload one index document per page. Page failures are counted
// and reported; successful uploads are never rolled back.
func ProcessDocumentIngestion(ctx context.Context, job jobModel.Job, e embedding.Embedder, index vectorDB.SearchIndex) jobModel.Job {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "filename", job.FileName)

	job.CurrentStep = jobModel.IngestInit
	if err := index.EnsureIndex(ctx); err != nil {
		log.Error("Error ensuring index exists", "error", err)
		return jobError(job, "Error creating search index")
	}

	job.CurrentStep = jobModel.IngestExtracting
	contentType := getDocType(job.FilePath)
	if contentType == docErr {
		return jobError(job, "Unsupported document type")
	}

	pages, err := extractText(job.FilePath, contentType)
	if err != nil {
		log.Error("Error extracting document content", "error", err)
		return jobError(job, "Error extracting document content")
	}
	if len(pages) == 0 {
		return jobError(job, "Document contained no extractable pages")
	}
	log.Debug("Extracted document", "pages", len(pages))

	job.CurrentStep = jobModel.IngestEmbedding
	for start := 0; start < len(pages); start += embedBatchSize {
		end := min(start+embedBatchSize, len(pages))
		batch := pages[start:end]

		vectors, err := embedBatch(ctx, e, batch)
		if err != nil {
			log.Error("Embedding batch failed", "pages", len(batch), "error", err)
			job.PagesFailed += len(batch)
			continue
		}

		job.CurrentStep = jobModel.IngestUploading
		for i, page := range batch {
			doc := chatModel.IndexedPage{
				Id:          uuid.New().String(),
				PageNumber:  fmt.Sprintf("Page_%d", page.Number),
				PageContent: page.Content,
				Vector:      vectors[i],
			}
			if err := index.UploadPage(ctx, doc); err != nil {
				log.Error("Upload failed", "page", doc.PageNumber, "error", err)
				job.PagesFailed++
				continue
			}
			job.PagesUploaded++
		}
	}

	if job.RemoveAfter {
		if err := os.Remove(job.FilePath); err != nil {
			log.Error("Error removing uploaded file", "error", err)
		}
	}

	if job.PagesUploaded == 0 {
		return jobError(job, "No pages could be ingested")
	}

	job.Status = jobModel.JobStatusComplete
	job.CurrentStep = jobModel.Complete
	log.Info("Document ingested", "uploaded", job.PagesUploaded, "failed", job.PagesFailed)
	return job
}

func embedBatch(ctx context.Context, e embedding.Embedder, batch []rawPage) ([][]float32, error) {
	texts := make([]string, len(batch))
	for i, page := range batch {
		texts[i] = page.Content
	}
	return e.BatchEmbedding(ctx, texts)
}

func jobError(job jobModel.Job, message string) jobModel.Job {
	job.Status = jobModel.JobStatusError
	job.CurrentStep = jobModel.Error
	job.Error = jobModel.JobError{
		Code:    http.StatusInternalServerError,
		Message: message,
		Retry:   true,
	}
	return job
}
