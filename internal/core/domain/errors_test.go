package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrAlreadyExists", ErrAlreadyExists},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrDecode", ErrDecode},
		{"ErrUnsupportedFormat", ErrUnsupportedFormat},
		{"ErrExtraction", ErrExtraction},
		{"ErrEmbeddingService", ErrEmbeddingService},
		{"ErrLLMService", ErrLLMService},
		{"ErrCorruptIndex", ErrCorruptIndex},
		{"ErrUnexpectedResponse", ErrUnexpectedResponse},
		{"ErrDimensionMismatch", ErrDimensionMismatch},
		{"ErrIngestCancelled", ErrIngestCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

// TestErrors_Wrapping tests that wrapped sentinels classify with errors.Is
func TestErrors_Wrapping(t *testing.T) {
	wrapped := fmt.Errorf("embed chunk 3: %w", ErrEmbeddingService)
	assert.True(t, errors.Is(wrapped, ErrEmbeddingService))
	assert.False(t, errors.Is(wrapped, ErrLLMService))

	doubly := fmt.Errorf("ingest: %w", wrapped)
	assert.True(t, errors.Is(doubly, ErrEmbeddingService))
}

// TestDimensionMismatchError tests the typed dimension error
func TestDimensionMismatchError(t *testing.T) {
	err := &DimensionMismatchError{Want: 1536, Got: 768}

	assert.Contains(t, err.Error(), "1536")
	assert.Contains(t, err.Error(), "768")

	// Matches the sentinel through Unwrap.
	assert.True(t, errors.Is(err, ErrDimensionMismatch))

	// Details recoverable with errors.As even when wrapped.
	wrapped := fmt.Errorf("insert records: %w", err)
	var dimErr *DimensionMismatchError
	require.True(t, errors.As(wrapped, &dimErr))
	assert.Equal(t, 1536, dimErr.Want)
	assert.Equal(t, 768, dimErr.Got)
	assert.True(t, errors.Is(wrapped, ErrDimensionMismatch))
}
