package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dslipak/pdf"

	"motoassist/internal/domain/chatModel"
	"motoassist/internal/domain/jobModel"
)

// --- Mocks ---

type mockEmbedder struct {
	batchFunc func(ctx context.Context, texts []string) ([][]float32, error)
}

func (m *mockEmbedder) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	return nil, nil
}

func (m *mockEmbedder) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	if m.batchFunc != nil {
		return m.batchFunc(ctx, texts)
	}
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = []float32{0.5}
	}
	return vectors, nil
}

type mockIndex struct {
	uploaded   []chatModel.IndexedPage
	uploadFunc func(ctx context.Context, page chatModel.IndexedPage) error
}

func (m *mockIndex) Search(ctx context.Context, v []float32) ([]chatModel.SearchHit, error) {
	return nil, nil
}

func (m *mockIndex) EnsureIndex(ctx context.Context) error { return nil }

func (m *mockIndex) UploadPage(ctx context.Context, page chatModel.IndexedPage) error {
	if m.uploadFunc != nil {
		if err := m.uploadFunc(ctx, page); err != nil {
			return err
		}
	}
	m.uploaded = append(m.uploaded, page)
	return nil
}

// --- Unit Tests ---

func TestGetDocType(t *testing.T) {
	tests := []struct {
		path     string
		expected docType
	}{
		{"manual.pdf", docPDF},
		{"MANUAL.PDF", docPDF},
		{"notes.docx", docText},
		{"notes.txt", docText},
		{"image.png", docErr},
	}

	for _, tt := range tests {
		if got := getDocType(tt.path); got != tt.expected {
			t.Errorf("getDocType(%s) = %v; want %v", tt.path, got, tt.expected)
		}
	}
}

func TestOrderedPageText_ReadingOrder(t *testing.T) {
	// PDF coordinates grow upward, so the top line has the largest Y.
	fragments := []pdf.Text{
		{S: "bottom line", X: 10, Y: 10},
		{S: "right", X: 200, Y: 100},
		{S: "top ", X: 10, Y: 100},
		{S: "middle line", X: 10, Y: 50},
	}

	got := orderedPageText(fragments)
	want := "top right\nmiddle line\nbottom line"
	if got != want {
		t.Errorf("orderedPageText got %q, want %q", got, want)
	}
}

func TestOrderedPageText_BaselineTolerance(t *testing.T) {
	// fragments within the tolerance belong to the same line even when
	// their Y values differ slightly
	fragments := []pdf.Text{
		{S: "second", X: 50, Y: 99.2},
		{S: "first ", X: 10, Y: 100},
	}

	if got := orderedPageText(fragments); got != "first second" {
		t.Errorf("orderedPageText got %q, want %q", got, "first second")
	}
}

func TestProcessDocumentIngestion_PlainText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("carburetor jetting basics"), 0644); err != nil {
		t.Fatal(err)
	}

	index := &mockIndex{}
	job := jobModel.Job{Id: "job-1", FileName: "notes.txt", FilePath: path}

	result := ProcessDocumentIngestion(context.Background(), job, &mockEmbedder{}, index)

	if result.Status != jobModel.JobStatusComplete {
		t.Fatalf("Status got %v, want %v (error: %v)", result.Status, jobModel.JobStatusComplete, result.Error)
	}
	if result.PagesUploaded != 1 || result.PagesFailed != 0 {
		t.Errorf("page counts got (%d, %d), want (1, 0)", result.PagesUploaded, result.PagesFailed)
	}
	if len(index.uploaded) != 1 {
		t.Fatalf("uploaded %d pages, want 1", len(index.uploaded))
	}
	if index.uploaded[0].PageNumber != "Page_1" {
		t.Errorf("page label got %s, want Page_1", index.uploaded[0].PageNumber)
	}
	if index.uploaded[0].PageContent != "carburetor jetting basics" {
		t.Errorf("page content got %q", index.uploaded[0].PageContent)
	}
}

func TestProcessDocumentIngestion_EmbeddingFailureCountsPages(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("some content"), 0644); err != nil {
		t.Fatal(err)
	}

	embedder := &mockEmbedder{
		batchFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, errors.New("api limit")
		},
	}
	job := jobModel.Job{Id: "job-2", FileName: "notes.txt", FilePath: path}

	result := ProcessDocumentIngestion(context.Background(), job, embedder, &mockIndex{})

	if result.Status != jobModel.JobStatusError {
		t.Errorf("Status got %v, want %v", result.Status, jobModel.JobStatusError)
	}
	if result.PagesFailed != 1 || result.PagesUploaded != 0 {
		t.Errorf("page counts got (%d, %d), want (0, 1)", result.PagesUploaded, result.PagesFailed)
	}
}

func TestProcessDocumentIngestion_RemoveAfter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "staged.txt")
	if err := os.WriteFile(path, []byte("staged upload"), 0644); err != nil {
		t.Fatal(err)
	}

	job := jobModel.Job{Id: "job-3", FileName: "staged.txt", FilePath: path, RemoveAfter: true}

	result := ProcessDocumentIngestion(context.Background(), job, &mockEmbedder{}, &mockIndex{})

	if result.Status != jobModel.JobStatusComplete {
		t.Fatalf("Status got %v, want %v", result.Status, jobModel.JobStatusComplete)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("staged file should have been removed after ingestion")
	}
}

func TestProcessDocumentIngestion_UnsupportedType(t *testing.T) {
	job := jobModel.Job{Id: "job-4", FileName: "photo.png", FilePath: "photo.png"}

	result := ProcessDocumentIngestion(context.Background(), job, &mockEmbedder{}, &mockIndex{})

	if result.Status != jobModel.JobStatusError {
		t.Errorf("Status got %v, want %v", result.Status, jobModel.JobStatusError)
	}
	if result.Error.Message != "Unsupported document type" {
		t.Errorf("Error message got %q", result.Error.Message)
	}
}
