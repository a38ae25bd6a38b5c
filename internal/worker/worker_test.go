package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"motoassist/internal/config"
	"motoassist/internal/domain/jobModel"
	"motoassist/internal/job"
	"motoassist/internal/rag"
	"motoassist/pkg/logger_i"
)

// MockRagService to track if jobs are executed
type MockRagService struct {
	ProcessedCount int32
}

func (m *MockRagService) Ask(ctx context.Context, req rag.AskRequest) (rag.AskResult, error) {
	return rag.AskResult{}, nil
}

func (m *MockRagService) IngestDocument(ctx context.Context, j jobModel.Job) jobModel.Job {
	atomic.AddInt32(&m.ProcessedCount, 1)
	j.Status = jobModel.JobStatusComplete
	return j
}

type MockJobStore struct {
	OnSaveJob func(ctx context.Context, job jobModel.Job) error
}

func (m *MockJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	return jobModel.Job{}, false
}

func (m *MockJobStore) DeleteJob(ctx context.Context, jobID string) {}

func (m *MockJobStore) SaveJob(ctx context.Context, j jobModel.Job) error {
	if m.OnSaveJob != nil {
		return m.OnSaveJob(ctx, j)
	}
	return nil
}

func TestWorkerPool_Flow(t *testing.T) {
	jobSvc := &job.Service{
		JobChannel:        make(chan jobModel.Job, 10),
		DispatcherChannel: make(chan bool, 10),
		JobStore:          &MockJobStore{},
	}
	mockRag := &MockRagService{}
	stopChan := make(chan bool)
	wg := &sync.WaitGroup{}

	InitServices(jobSvc, mockRag)
	InitWorkerPool(stopChan, wg)

	// Reset global state for test
	atomic.StoreInt64(&currentWorkerCount, 0)

	t.Run("Dispatcher creates worker on signal", func(t *testing.T) {
		jobSvc.DispatcherChannel <- true

		// Give it a moment to spawn
		time.Sleep(50 * time.Millisecond)

		count := atomic.LoadInt64(&currentWorkerCount)
		if count < 1 {
			t.Errorf("Expected at least 1 worker, got %d", count)
		}
	})

	t.Run("Worker processes an ingest job", func(t *testing.T) {
		var savedStates []jobModel.JobStatus
		var mu sync.Mutex
		jobSvc.JobStore = &MockJobStore{
			OnSaveJob: func(ctx context.Context, j jobModel.Job) error {
				mu.Lock()
				savedStates = append(savedStates, j.Status)
				mu.Unlock()
				return nil
			},
		}

		jobSvc.JobChannel <- jobModel.Job{Id: "ingest-1", FileName: "manual.pdf"}

		time.Sleep(50 * time.Millisecond)

		if processed := atomic.LoadInt32(&mockRag.ProcessedCount); processed != 1 {
			t.Errorf("Expected 1 job processed, got %d", processed)
		}

		mu.Lock()
		defer mu.Unlock()
		if len(savedStates) < 2 {
			t.Fatalf("Expected RUNNING then terminal state saved, got %v", savedStates)
		}
		if savedStates[0] != jobModel.JobStatusRunning {
			t.Errorf("First saved state got %s, want %s", savedStates[0], jobModel.JobStatusRunning)
		}
		if savedStates[len(savedStates)-1] != jobModel.JobStatusComplete {
			t.Errorf("Final saved state got %s, want %s", savedStates[len(savedStates)-1], jobModel.JobStatusComplete)
		}
	})

	t.Run("Stop signal retires workers", func(t *testing.T) {
		close(stopChan)

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("Workers did not stop within timeout")
		}
	})
}

func TestWorker_IdleTimeout(t *testing.T) {
	if testing.Short() {
		t.Skip("idle retirement waits out the full idle timeout")
	}

	atomic.StoreInt64(&currentWorkerCount, 0)
	logger = logger_i.NewLogger("TestWorkerPool")
	jobSvc := &job.Service{
		JobChannel: make(chan jobModel.Job),
		JobStore:   &MockJobStore{},
	}
	InitServices(jobSvc, &MockRagService{})

	wg := &sync.WaitGroup{}
	stopChan := make(chan bool)
	workerWaitGroup = wg
	stopWorkerChannel = stopChan

	// Two idle workers above the floor of one: exactly one should retire.
	createWorker()
	createWorker()

	time.Sleep(config.IdleWorkerTimeout + 200*time.Millisecond)

	count := atomic.LoadInt64(&currentWorkerCount)
	if count >= 2 {
		t.Errorf("Expected idle pool to shrink below 2 workers, got %d", count)
	}

	close(stopChan)
	wg.Wait()
}
