// Package appErrors holds the error taxonomy shared by every layer.
//
// Callers match with errors.Is against the sentinels; the HTTP layer maps
// them to status codes in one place.
package appErrors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failure")
	ErrUpstream   = errors.New("upstream failure")
	ErrEmbedding  = errors.New("embedding failure")
)

const (
	ServiceEmbedding   = "embedding"
	ServiceVectorIndex = "vector_index"
	ServiceLLM         = "llm"
)

// UpstreamError wraps a failure of an external collaborator.
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool {
	if target == ErrUpstream {
		return true
	}
	return target == ErrEmbedding && e.Service == ServiceEmbedding
}

func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Upstream returns nil for a nil err so call sites can wrap unconditionally.
func Upstream(service string, err error) error {
	if err == nil {
		return nil
	}
	var ue *UpstreamError
	if errors.As(err, &ue) && ue.Service == service {
		return err
	}
	return &UpstreamError{Service: service, Err: err}
}

func Embedding(err error) error {
	return Upstream(ServiceEmbedding, err)
}

func IsNotFound(err error) bool   { return errors.Is(err, ErrNotFound) }
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }
func IsUpstream(err error) bool   { return errors.Is(err, ErrUpstream) }

// StatusCode maps an error onto the HTTP status the API reports for it.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsNotFound(err):
		return http.StatusNotFound
	case IsValidation(err):
		return http.StatusBadRequest
	case IsUpstream(err):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
