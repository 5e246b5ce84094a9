package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/akolanti/BookRAG/internal/adapter"
	"github.com/akolanti/BookRAG/internal/domain/appErrors"
	"github.com/akolanti/BookRAG/pkg/logger_i"
)

const maxBodyBytes = 1 << 20

var utilLogger = logger_i.NewLogger("HandlerUtils")

// clearWriteDeadline lifts the server WriteTimeout for handlers that can run
// longer than it. The request context still bounds the work.
func clearWriteDeadline(w http.ResponseWriter, r *http.Request) *http.ResponseController {
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		utilLogger.FromContext(r.Context()).Warn("Could not clear write deadline", "err", err)
	}
	return rc
}

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// the status line is already out
		utilLogger.Error("Error encoding response", "err", err)
	}
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, id string, message string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(id, message, httpCode))
}

// writeError maps err onto its status. Server-side failures keep their
// detail in the log, not the body.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, id string, err error) {
	code := appErrors.StatusCode(err)
	log := h.logger.FromContext(r.Context())
	message := err.Error()
	switch {
	case code == http.StatusBadGateway:
		log.Error("Upstream failure", "path", r.URL.Path, "err", err)
		message = "upstream service failure"
	case code >= http.StatusInternalServerError:
		log.Error("Request failed", "path", r.URL.Path, "err", err)
		message = "internal server error"
	default:
		log.Warn("Request rejected", "path", r.URL.Path, "code", code, "err", err)
	}
	res := adapter.BadRequest(id, message, code)
	res.Error.Retry = code == http.StatusBadGateway
	writeJsonResponse(w, code, res)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			utilLogger.Warn("Couldn't close the request body", "err", err)
		}
	}(body)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return appErrors.Validation("request body larger than %d bytes", tooLarge.Limit)
		}
		return appErrors.Validation("invalid request body: %v", err)
	}
	return nil
}

// intQuery parses an optional integer query parameter.
func intQuery(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, appErrors.Validation("%s must be a non-negative integer, got %q", key, raw)
	}
	return v, nil
}
