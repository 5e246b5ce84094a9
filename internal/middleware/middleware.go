package middleware

import (
	"net/http"
	"strconv"

	"github.com/akolanti/BookRAG/internal/config"
	"github.com/akolanti/BookRAG/internal/handlers"
	"github.com/akolanti/BookRAG/internal/metrics"
	"github.com/akolanti/BookRAG/pkg/logger_i"
	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

// step is one stage of the request pipeline. A step that sets badRequest
// stops the pipeline.
type step func(re requestResponseStruct) requestResponseStruct

type Middleware struct {
	adminToken string
	limiter    *IPRateLimiter
	origins    []string
	logger     *logger_i.Logger
}

func New(settings config.Settings) *Middleware {
	return &Middleware{
		adminToken: settings.AdminToken,
		limiter:    NewIPRateLimiter(rate.Limit(config.RATE_LIMIT_PER_SECOND), config.BURST_RATE_LIMIT_PER_SECOND),
		origins:    settings.CORSOrigins,
		logger:     logger_i.NewLogger("middleware"),
	}
}

// Public wraps routes open to everyone.
func (m *Middleware) Public(next http.HandlerFunc) http.HandlerFunc {
	return m.Wrap(next)
}

// Chat wraps the question routes, which call paid model APIs.
func (m *Middleware) Chat(next http.HandlerFunc) http.HandlerFunc {
	return m.Wrap(next, m.rateLimiter)
}

func (m *Middleware) Admin(next http.HandlerFunc) http.HandlerFunc {
	return m.Wrap(next, m.authenticate)
}

// Wrap injects the trace id, runs steps in order and records the request
// metrics once the handler has written its status.
func (m *Middleware) Wrap(next http.HandlerFunc, steps ...step) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := metrics.NewStatusRecorder(w)
		re := injectTrace(requestResponseStruct{req: r, writer: rec, logger: m.logger})
		defer func() {
			metrics.HttpRequestsTotal.WithLabelValues(routeLabel(re.req), strconv.Itoa(rec.Status)).Inc()
		}()

		for _, s := range steps {
			if re = s(re); re.badRequest.isBadRequest {
				handleBadRequest(re)
				return
			}
		}
		next(rec, re.req)
	}
}

// routeLabel prefers the chi pattern so ids in paths do not blow up label
// cardinality.
func routeLabel(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

func handleBadRequest(re requestResponseStruct) {
	re.logger.Warn("Bad request", "httpCode", re.badRequest.httpCode, "errorMessage", re.badRequest.errorMessage, "IP", re.req.RemoteAddr)
	handlers.WriteErrorResponse(re.writer, re.badRequest.httpCode, "", re.badRequest.errorMessage)
}
