package middleware

import (
	"context"
	"crypto/subtle"
	"net"
	"net/http"
	"strings"

	"motoassist/internal/adapter/utils"
	"motoassist/internal/config"
	"motoassist/pkg/logger_i"
)

func injectTrace(req *http.Request) *http.Request {
	trace := req.Header.Get("X-Trace-Id")
	if trace == "" {
		trace = utils.GetNewUUID()
	}
	ctx := context.WithValue(req.Context(), config.TRACE_ID_KEY, trace)
	req.Header.Set(`X-Trace-Id`, trace)
	return req.WithContext(ctx)
}

// authenticate passes everything through when no token is configured.
func (c *Chain) authenticate(r *http.Request, log *logger_i.Logger) bool {
	if c.authToken == "" {
		return true
	}
	return IsValidBearerToken(r.Header.Get("Authorization"), c.authToken, log)
}

func IsValidBearerToken(authHeader string, token string, log *logger_i.Logger) bool {
	if authHeader == "" {
		log.Warn("Empty authorization header")
		return false
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		log.Warn("No Bearer header")
		return false
	}
	if subtle.ConstantTimeCompare([]byte(strings.TrimPrefix(authHeader, "Bearer ")), []byte(token)) != 1 {
		log.Warn("Invalid authorization header")
		return false
	}
	return true
}

func (c *Chain) rateLimit(r *http.Request, log *logger_i.Logger) bool {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}

	if !c.limiter.GetLimiter(ip).Allow() {
		log.Warn("Too many requests", "ip", ip)
		return false
	}
	return true
}
