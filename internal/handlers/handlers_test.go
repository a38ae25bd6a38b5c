package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"motoassist/internal/api"
	"motoassist/internal/config"
	"motoassist/internal/data/store"
	"motoassist/internal/domain/chatModel"
	"motoassist/internal/domain/jobModel"
	"motoassist/internal/handlers"
	"motoassist/internal/job"
	"motoassist/internal/middleware"
	"motoassist/internal/rag"
)

// fakeRag implements rag.Service
type fakeRag struct {
	onAsk func(ctx context.Context, req rag.AskRequest) (rag.AskResult, error)
}

func (f *fakeRag) Ask(ctx context.Context, req rag.AskRequest) (rag.AskResult, error) {
	if f.onAsk != nil {
		return f.onAsk(ctx, req)
	}
	return rag.AskResult{Response: "fake answer", Images: []string{}}, nil
}

func (f *fakeRag) IngestDocument(ctx context.Context, j jobModel.Job) jobModel.Job {
	j.Status = jobModel.JobStatusComplete
	return j
}

type testEnv struct {
	router        *chi.Mux
	conversations chatModel.ConversationStore
	jobs          *job.Service
}

func newTestEnv(t *testing.T, ragService rag.Service) testEnv {
	t.Helper()

	conversations := store.InitConversationStore()
	jobService := job.InitJobService(job.ServiceConfig{
		JobChannel:        make(chan jobModel.Job, config.BufferLimit),
		DispatcherChannel: make(chan bool, 1),
		JobStore:          store.InitInMemoryJobStore(),
	})

	handler := handlers.NewChatHandler(ragService, conversations, jobService)
	chain := middleware.NewChain("")

	router := chi.NewRouter()
	router.Get("/", chain.Wrap(handler.Welcome))
	router.Post("/ask", chain.Wrap(handler.Ask))
	router.Get("/history/{user_id}", chain.Wrap(handler.History))
	router.Get("/history/{user_id}/{thread_id}", chain.Wrap(handler.History))
	router.Post("/getchathistory", chain.Wrap(handler.GetChatHistory))
	router.Post("/ingest", chain.Wrap(handler.Ingest))
	router.Get("/status/{id}", chain.Wrap(handler.Status))

	return testEnv{router: router, conversations: conversations, jobs: jobService}
}

func doJSON(t *testing.T, router *chi.Mux, method, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestWelcome(t *testing.T) {
	env := newTestEnv(t, &fakeRag{})

	rec := doJSON(t, env.router, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status got %d, want 200", rec.Code)
	}

	var resp api.WelcomeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Message == "" {
		t.Error("welcome message is empty")
	}
}

func TestAsk_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"Missing_UserID", `{"question": "how?"}`},
		{"Missing_Question", `{"user_id": "u1"}`},
		{"Blank_Question", `{"user_id": "u1", "question": "   "}`},
		{"Invalid_JSON", `{not json`},
		{"Empty_Body", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, &fakeRag{})

			rec := doJSON(t, env.router, http.MethodPost, "/ask", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status got %d, want 400 (body: %s)", rec.Code, rec.Body.String())
			}

			var resp api.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("error body is not JSON: %v", err)
			}
			if resp.Code != http.StatusBadRequest {
				t.Errorf("error code got %d, want 400", resp.Code)
			}
		})
	}
}

func TestAsk_Success(t *testing.T) {
	fake := &fakeRag{
		onAsk: func(ctx context.Context, req rag.AskRequest) (rag.AskResult, error) {
			if req.UserId != "u1" || req.ThreadId != "engine" || req.Question != "why no spark?" {
				t.Errorf("request not passed through: %+v", req)
			}
			return rag.AskResult{Response: "check the coil", Images: []string{}}, nil
		},
	}
	env := newTestEnv(t, fake)

	rec := doJSON(t, env.router, http.MethodPost, "/ask",
		`{"user_id": "u1", "thread": "engine", "question": "why no spark?"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status got %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}

	// images must serialize as [] when empty, never null
	if !strings.Contains(rec.Body.String(), `"images":[]`) {
		t.Errorf("empty images did not serialize as []: %s", rec.Body.String())
	}

	var resp api.AskResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Response != "check the coil" {
		t.Errorf("response got %q", resp.Response)
	}
}

func TestAsk_UpstreamFailure(t *testing.T) {
	fake := &fakeRag{
		onAsk: func(ctx context.Context, req rag.AskRequest) (rag.AskResult, error) {
			return rag.AskResult{}, errors.New("embedding question: api limit")
		},
	}
	env := newTestEnv(t, fake)

	rec := doJSON(t, env.router, http.MethodPost, "/ask", `{"user_id": "u1", "question": "q"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status got %d, want 500", rec.Code)
	}
	// upstream details must not leak to the client
	if strings.Contains(rec.Body.String(), "api limit") {
		t.Errorf("error response leaked upstream detail: %s", rec.Body.String())
	}
}

func TestHistory_Endpoints(t *testing.T) {
	env := newTestEnv(t, &fakeRag{})
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	_ = env.conversations.SaveTurn(ctx, chatModel.ConversationTurn{
		Id: "t1", UserId: "u1", ThreadId: "ta", Request: "q1", Response: "a1", Timestamp: base,
	})
	_ = env.conversations.SaveTurn(ctx, chatModel.ConversationTurn{
		Id: "t2", UserId: "u1", ThreadId: "tb", Request: "q2", Response: "a2", Timestamp: base.Add(time.Minute),
	})

	t.Run("All Threads Most Recent First", func(t *testing.T) {
		rec := doJSON(t, env.router, http.MethodGet, "/history/u1", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status got %d, want 200", rec.Code)
		}
		var records []api.TurnRecord
		if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(records) != 2 || records[0].Id != "t2" {
			t.Errorf("history wrong: %+v", records)
		}
	})

	t.Run("Thread Scoped", func(t *testing.T) {
		rec := doJSON(t, env.router, http.MethodGet, "/history/u1/ta", "")
		var records []api.TurnRecord
		if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(records) != 1 || records[0].ThreadID != "ta" {
			t.Errorf("thread filter wrong: %+v", records)
		}
	})

	t.Run("Unknown User Serves Empty Array", func(t *testing.T) {
		rec := doJSON(t, env.router, http.MethodGet, "/history/ghost", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status got %d, want 200", rec.Code)
		}
		if strings.TrimSpace(rec.Body.String()) != "[]" {
			t.Errorf("empty history must serialize as [], got %s", rec.Body.String())
		}
	})

	t.Run("Reduced History", func(t *testing.T) {
		rec := doJSON(t, env.router, http.MethodPost, "/getchathistory", `{"user_id": "u1"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status got %d, want 200", rec.Code)
		}
		var entries []api.ChatHistoryEntry
		if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(entries) != 2 || entries[0].Req != "q2" {
			t.Errorf("reduced history wrong: %+v", entries)
		}
	})

	t.Run("Reduced History Requires UserID", func(t *testing.T) {
		rec := doJSON(t, env.router, http.MethodPost, "/getchathistory", `{}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status got %d, want 400", rec.Code)
		}
	})
}

func TestIngest_QueuesJob(t *testing.T) {
	env := newTestEnv(t, &fakeRag{})

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("document", "manual.txt")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write([]byte("fork oil capacity table")); err != nil {
		t.Fatal(err)
	}
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/ingest", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status got %d, want 202 (body: %s)", rec.Code, rec.Body.String())
	}

	var resp api.InitJobResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Id == "" || !strings.HasSuffix(resp.StatusURL, resp.Id) {
		t.Errorf("init response wrong: %+v", resp)
	}

	select {
	case queued := <-env.jobs.JobChannel:
		if queued.FileName != "manual.txt" || !queued.RemoveAfter {
			t.Errorf("queued job wrong: %+v", queued)
		}
	default:
		t.Fatal("no job was queued")
	}

	// the queued state is visible on the status endpoint immediately
	statusRec := doJSON(t, env.router, http.MethodGet, "/status/"+resp.Id, "")
	if statusRec.Code != http.StatusOK {
		t.Fatalf("status endpoint got %d, want 200", statusRec.Code)
	}
	var jobResp api.JobResponse
	if err := json.Unmarshal(statusRec.Body.Bytes(), &jobResp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if jobResp.Status != string(jobModel.JobStatusQueued) {
		t.Errorf("job status got %s, want %s", jobResp.Status, jobModel.JobStatusQueued)
	}
}

// enqueueAwareJobStore records how many jobs were already queued when each
// save landed, to pin down the persist-then-enqueue order.
type enqueueAwareJobStore struct {
	mu           sync.Mutex
	jobChannel   chan jobModel.Job
	saved        map[string]jobModel.Job
	queuedAtSave []int
}

func newEnqueueAwareJobStore(jobChannel chan jobModel.Job) *enqueueAwareJobStore {
	return &enqueueAwareJobStore{
		jobChannel: jobChannel,
		saved:      make(map[string]jobModel.Job),
	}
}

func (s *enqueueAwareJobStore) SaveJob(ctx context.Context, j jobModel.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queuedAtSave = append(s.queuedAtSave, len(s.jobChannel))
	s.saved[j.Id] = j
	return nil
}

func (s *enqueueAwareJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, found := s.saved[jobId]
	return j, found
}

func (s *enqueueAwareJobStore) DeleteJob(ctx context.Context, jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.saved, jobID)
}

func newIngestEnv(t *testing.T, jobChannel chan jobModel.Job, jobStore jobModel.JobStore) testEnv {
	t.Helper()

	conversations := store.InitConversationStore()
	jobService := job.InitJobService(job.ServiceConfig{
		JobChannel:        jobChannel,
		DispatcherChannel: make(chan bool, 1),
		JobStore:          jobStore,
	})

	handler := handlers.NewChatHandler(&fakeRag{}, conversations, jobService)
	chain := middleware.NewChain("")

	router := chi.NewRouter()
	router.Post("/ingest", chain.Wrap(handler.Ingest))
	router.Get("/status/{id}", chain.Wrap(handler.Status))

	return testEnv{router: router, conversations: conversations, jobs: jobService}
}

func uploadDocument(t *testing.T, router *chi.Mux, fileName string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("document", fileName)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write([]byte("spark plug gap table")); err != nil {
		t.Fatal(err)
	}
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/ingest", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestIngest_PersistsQueuedStateBeforeEnqueue(t *testing.T) {
	jobChannel := make(chan jobModel.Job, config.BufferLimit)
	jobStore := newEnqueueAwareJobStore(jobChannel)
	env := newIngestEnv(t, jobChannel, jobStore)

	rec := uploadDocument(t, env.router, "manual.txt")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status got %d, want 202 (body: %s)", rec.Code, rec.Body.String())
	}

	// the QUEUED record must land before any worker can see the job;
	// saving after the send lets a fast worker's COMPLETE get overwritten
	if len(jobStore.queuedAtSave) != 1 {
		t.Fatalf("expected exactly one save from the handler, got %d", len(jobStore.queuedAtSave))
	}
	if jobStore.queuedAtSave[0] != 0 {
		t.Errorf("job was enqueued before its QUEUED state was persisted")
	}

	select {
	case <-jobChannel:
	default:
		t.Fatal("no job was queued")
	}
}

func TestIngest_QueueFullLeavesNoStaleJobRecord(t *testing.T) {
	// unbuffered channel with no worker: the send can never succeed
	jobChannel := make(chan jobModel.Job)
	jobStore := newEnqueueAwareJobStore(jobChannel)
	env := newIngestEnv(t, jobChannel, jobStore)

	rec := uploadDocument(t, env.router, "manual.txt")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status got %d, want 503 (body: %s)", rec.Code, rec.Body.String())
	}

	jobStore.mu.Lock()
	remaining := len(jobStore.saved)
	jobStore.mu.Unlock()
	if remaining != 0 {
		t.Errorf("rejected upload left %d job record(s) behind", remaining)
	}
}

func TestIngest_RequiresDocument(t *testing.T) {
	env := newTestEnv(t, &fakeRag{})

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	_ = writer.WriteField("note", "no file here")
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/ingest", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status got %d, want 400", rec.Code)
	}
}

func TestStatus_UnknownJob(t *testing.T) {
	env := newTestEnv(t, &fakeRag{})

	rec := doJSON(t, env.router, http.MethodGet, "/status/no-such-job", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status got %d, want 404", rec.Code)
	}
}
