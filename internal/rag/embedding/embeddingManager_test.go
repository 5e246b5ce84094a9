package embedding

import (
	"errors"
	"testing"

	"github.com/akolanti/BookRAG/internal/domain/appErrors"
)

func TestCheckBatch(t *testing.T) {
	tests := []struct {
		name    string
		vectors [][]float32
		count   int
		dim     int
		wantErr bool
	}{
		{"ok", [][]float32{{1, 2}, {3, 4}}, 2, 2, false},
		{"count mismatch", [][]float32{{1, 2}}, 2, 2, true},
		{"dimension mismatch", [][]float32{{1, 2}, {3}}, 2, 2, true},
		{"empty vector", [][]float32{{}, {1, 2}}, 2, 2, true},
		{"any dimension", [][]float32{{1}, {1, 2, 3}}, 2, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckBatch(tt.vectors, tt.count, tt.dim)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, appErrors.ErrEmbedding) {
				t.Errorf("expected an embedding failure, got %v", err)
			}
		})
	}
}
