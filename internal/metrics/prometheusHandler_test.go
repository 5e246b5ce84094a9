package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusRecorder_CapturesStatusAndFlushes(t *testing.T) {
	w := httptest.NewRecorder()
	rec := NewStatusRecorder(w)

	rec.WriteHeader(http.StatusTeapot)
	_, _ = rec.Write([]byte("data: x\n\n"))
	rec.Flush()

	assert.Equal(t, http.StatusTeapot, rec.Status)
	assert.True(t, w.Flushed)
	assert.Same(t, http.ResponseWriter(w), rec.Unwrap())
}

func TestStatusRecorder_DefaultsToOK(t *testing.T) {
	rec := NewStatusRecorder(httptest.NewRecorder())
	_, _ = rec.Write([]byte("ok"))
	assert.Equal(t, http.StatusOK, rec.Status)
}
