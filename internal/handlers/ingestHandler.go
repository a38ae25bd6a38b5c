package handlers

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"motoassist/internal/adapter"
	"motoassist/internal/adapter/utils"
	"motoassist/internal/config"
	"motoassist/internal/domain/jobModel"
	"motoassist/internal/metrics"
)

// Ingest godoc
// @Summary      Queue a document for indexing
// @Description  Accepts a multipart upload, stages it to disk and queues an ingestion job.
// @Tags         Ingest
// @Accept       multipart/form-data
// @Produce      json
// @Param        document       formData  file    true   "PDF, docx or plain text document"
// @Param        document_name  formData  string  false  "Display name override for the document"
// @Success      202  {object}  api.InitJobResponse
// @Failure      400  {object}  api.ErrorResponse
// @Failure      503  {object}  api.ErrorResponse "Job queue is full"
// @Router       /ingest [post]
func (h *ChatHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	log := h.requestLogger(r)

	if err := r.ParseMultipartForm(config.MaxUploadBytes); err != nil {
		log.Warn("Bad ingest request", "error:", err)
		WriteErrorResponse(w, http.StatusBadRequest, "expected multipart form upload")
		return
	}

	file, header, err := r.FormFile("document")
	if err != nil {
		log.Warn("Bad ingest request", "error:", err)
		WriteErrorResponse(w, http.StatusBadRequest, "document file is required")
		return
	}
	defer func(f io.Closer) {
		_ = f.Close()
	}(file)

	fileName := header.Filename
	if name := r.FormValue("document_name"); name != "" {
		fileName = name
	}

	stagedPath, err := stageUpload(file, header.Filename)
	if err != nil {
		log.Error("Failed to stage upload", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	newJob := jobModel.Job{
		Id:          utils.GetNewUUID(),
		TraceId:     traceIdFromContext(r),
		FileName:    fileName,
		FilePath:    stagedPath,
		RemoveAfter: true,
		CreatedTime: time.Now().UTC(),
		Status:      jobModel.JobStatusQueued,
		CurrentStep: jobModel.IngestInit,
	}

	// persist the queued state before the job is visible to any worker, so
	// the worker's RUNNING/COMPLETE saves can never be overwritten by it
	if err := h.jobs.JobStore.SaveJob(r.Context(), newJob); err != nil {
		log.Warn("Failed to persist initial job state", "jobId", newJob.Id, "error", err)
	}

	select {
	case h.jobs.JobChannel <- newJob:
	default:
		h.jobs.JobStore.DeleteJob(r.Context(), newJob.Id)
		_ = os.Remove(stagedPath)
		log.Warn("Job queue full, rejecting upload", "file", fileName)
		WriteErrorResponse(w, http.StatusServiceUnavailable, "ingestion queue is full, retry later")
		return
	}
	metrics.IncrementJobsInQueue()

	requestCount := atomic.AddInt64(&h.jobs.RequestCount, 1)
	if requestCount%config.RequestsPerNewWorkerCount == 0 {
		select {
		case h.jobs.DispatcherChannel <- true:
			metrics.StartDispatcherSignalCount()
		default:
		}
	}

	log.Info("Queued ingestion job", "jobId", newJob.Id, "file", fileName)
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newJob.Id))
}

// Status godoc
// @Summary      Ingestion job status
// @Tags         Ingest
// @Produce      json
// @Param        id   path      string  true  "Job id"
// @Success      200  {object}  api.JobResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /status/{id} [get]
func (h *ChatHandler) Status(w http.ResponseWriter, r *http.Request) {
	log := h.requestLogger(r)

	jobId := utils.GetChiURLParam(r, "id")
	storedJob, found := h.jobs.JobStore.GetJob(r.Context(), jobId)
	if !found {
		log.Warn("Unknown job id", "jobId", jobId)
		WriteErrorResponse(w, http.StatusNotFound, "job not found")
		return
	}

	writeJsonResponse(w, http.StatusOK, adapter.ToJobResponse(storedJob))
}

func stageUpload(file io.Reader, fileName string) (string, error) {
	targetDir, err := getTargetDirectory()
	if err != nil {
		return "", err
	}

	staged, err := os.CreateTemp(targetDir, "upload-*"+filepath.Ext(fileName))
	if err != nil {
		return "", err
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(staged)

	if _, err := io.Copy(staged, file); err != nil {
		_ = os.Remove(staged.Name())
		return "", err
	}
	return staged.Name(), nil
}
