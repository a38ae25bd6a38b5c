package worker

import (
	"context"
	"sync/atomic"
	"time"

	"motoassist/internal/config"
	"motoassist/internal/domain/jobModel"
	"motoassist/internal/metrics"
)

func executeJob(currentJob jobModel.Job) {
	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, currentJob.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, 10*time.Minute)
	defer cancel()
	logger.Debug("Processing ingest job:", "job Id:", currentJob.Id)

	saveJobState(ctx, currentJob, jobModel.JobStatusRunning)

	currentJob = _ragService.IngestDocument(ctx, currentJob)

	currentJob.EndTime = time.Now()
	if currentJob.Status != jobModel.JobStatusError {
		currentJob.Status = jobModel.JobStatusComplete
	}
	saveJobState(ctx, currentJob, currentJob.Status)
}

func removeWorker(reason string) {
	workerWaitGroup.Done()
	atomic.AddInt64(&currentWorkerCount, -1)
	logger.Info("Removed worker ", "reason", reason, "workerCount", currentWorkerCount)
	metrics.DecrementActiveWorkerCount()
}

func saveJobState(ctx context.Context, currentJob jobModel.Job, jobStatus jobModel.JobStatus) {
	currentJob.Status = jobStatus
	if err := _jobService.JobStore.SaveJob(ctx, currentJob); err != nil {
		logger.Error("Failed to update job status", "err", err)
	}
}
