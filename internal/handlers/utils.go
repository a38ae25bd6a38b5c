package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"

	"motoassist/internal/api"
	"motoassist/internal/config"
	"motoassist/pkg/logger_i"
)

func writeJsonResponse(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger_i.NewLogger("Handlers").Error("Failed to encode response", "error", err)
	}
}

func WriteErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	writeJsonResponse(w, statusCode, api.ErrorResponse{
		Code:    statusCode,
		Message: message,
	})
}

// getTargetDirectory returns the staging directory for uploads, creating it
// on first use.
func getTargetDirectory() (string, error) {
	target := filepath.Join(os.TempDir(), "motoassist-uploads")
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", err
	}
	return target, nil
}

func (h *ChatHandler) requestLogger(r *http.Request) *logger_i.Logger {
	if traceId := traceIdFromContext(r); traceId != "" {
		return h.logger.With("traceId", traceId)
	}
	return h.logger
}

func traceIdFromContext(r *http.Request) string {
	if traceId, ok := r.Context().Value(config.TRACE_ID_KEY).(string); ok {
		return traceId
	}
	return ""
}
