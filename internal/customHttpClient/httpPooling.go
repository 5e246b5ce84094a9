package customHttpClient

import (
	"net/http"
	"time"

	"github.com/akolanti/BookRAG/internal/config"
)

// one transport for every provider SDK so connections are reused across
// the embedder and the llm clients
var customTransport = &http.Transport{
	Proxy:               http.ProxyFromEnvironment,
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
	ForceAttemptHTTP2:   true,
}

// NewClient returns a client on the shared pool. A zero timeout leaves the
// deadline to the request context, which is what streaming calls need.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: customTransport,
		Timeout:   timeout,
	}
}
