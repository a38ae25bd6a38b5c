package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"

	"motoassist/internal/api"
	"motoassist/internal/config"
	"motoassist/internal/metrics"
	"motoassist/pkg/logger_i"
)

// Chain is the per-route wrapper: trace injection, optional bearer auth,
// per-IP rate limiting and request metrics. Built once at startup and
// handed to the server, instead of package-level handler globals.
type Chain struct {
	authToken string
	limiter   *IPRateLimiter
	logger    *logger_i.Logger
}

func NewChain(authToken string) *Chain {
	return &Chain{
		authToken: authToken,
		limiter:   NewIPRateLimiter(config.RATE_LIMIT_PER_SECOND, config.BURST_RATE_LIMIT_PER_SECOND),
		logger:    logger_i.NewLogger("middleware"),
	}
}

func (c *Chain) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: 200} //metrics

		r = injectTrace(r)
		log := c.logger.With("traceId", r.Context().Value(config.TRACE_ID_KEY))

		if !c.authenticate(r, log) {
			writeMiddlewareError(rec, http.StatusUnauthorized, "Unauthorized")
		} else if !c.rateLimit(r, log) {
			writeMiddlewareError(rec, http.StatusTooManyRequests, "Rate limit exceeded")
		} else {
			next(rec, r)
		}

		metrics.HttpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.Status)).Inc() //metrics
	}
}

func writeMiddlewareError(w http.ResponseWriter, httpCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpCode)
	_ = json.NewEncoder(w).Encode(api.ErrorResponse{Code: httpCode, Message: message})
}
