// Package utils holds the router scaffolding and request helpers shared by
// the server, the handlers and the middleware.
package utils

import (
	"net/http"
	"strings"

	_ "github.com/akolanti/BookRAG/cmd/api/docs"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

const (
	TraceHeader = "X-Trace-Id"
	maxTraceLen = 128
)

// RequestTraceID returns the caller's trace id, or a fresh one when the
// header is missing or too long to be trusted in logs.
func RequestTraceID(r *http.Request) string {
	trace := strings.TrimSpace(r.Header.Get(TraceHeader))
	if trace == "" || len(trace) > maxTraceLen {
		return uuid.NewString()
	}
	return trace
}

func GetChiURLParam(r *http.Request, key string) string {
	return strings.TrimSpace(chi.URLParam(r, key))
}

// NewRouter returns a chi router with the API docs under /swagger and the
// prometheus scrape endpoint under /metrics.
func NewRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/swagger/index.html", http.StatusMovedPermanently)
	})
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DocExpansion("list"),
	))
	return r
}
