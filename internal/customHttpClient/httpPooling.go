package customHttpClient

import (
	"net/http"

	"motoassist/internal/config"
)

var customTransport = &http.Transport{
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

var pooledClient = &http.Client{Transport: customTransport}

// Pooled returns the shared connection-reusing client handed to the
// embedding and completion SDKs.
func Pooled() *http.Client {
	return pooledClient
}
