package jobModel

import (
	"context"
	"time"
)

type JobStatus string
type InternalStatus string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "Error"

	IngestInit       InternalStatus = "IngestInit"
	IngestExtracting InternalStatus = "IngestExtracting"
	IngestEmbedding  InternalStatus = "IngestEmbedding"
	IngestUploading  InternalStatus = "IngestUploading"
	Complete         InternalStatus = "Complete"
	Error            InternalStatus = "Error"
)

// Job tracks one asynchronous document ingestion. Chat requests are served
// synchronously and never become jobs.
type Job struct {
	Id          string         `json:"id"`
	TraceId     string         `json:"trace_id"`
	FileName    string         `json:"file_name"`
	FilePath    string         `json:"file_path"`
	RemoveAfter bool           `json:"remove_after"`
	Error       JobError       `json:"error,omitempty"`
	CreatedTime time.Time      `json:"created_time"`
	EndTime     time.Time      `json:"end_time,omitempty"`
	Status      JobStatus      `json:"status"`
	CurrentStep InternalStatus `json:"current_step"`

	// per-page accounting; failed pages are reported, never rolled back
	PagesUploaded int `json:"pages_uploaded"`
	PagesFailed   int `json:"pages_failed"`
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string)
}
