package pdf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/veritas-labs/counsel/internal/core/domain"
)

func TestSupportedMIMETypes(t *testing.T) {
	mimeTypes := New().SupportedMIMETypes()
	assert.Contains(t, mimeTypes, "application/pdf")
	assert.Contains(t, mimeTypes, "application/x-pdf")
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 50, New().Priority())
}

func TestExtract_NilDocument(t *testing.T) {
	result, err := New().Extract(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestExtract_NotAPDF(t *testing.T) {
	raw := &domain.RawDocument{
		URI:      "/docs/fake.pdf",
		MIMEType: "application/pdf",
		Content:  []byte("this is not a pdf at all"),
	}

	result, err := New().Extract(context.Background(), raw)
	assert.ErrorIs(t, err, domain.ErrExtraction)
	assert.Nil(t, result)
}

func TestExtract_TruncatedPDF(t *testing.T) {
	// A valid header followed by garbage. The parser must fail or panic;
	// either way the caller sees ErrExtraction, not a crash.
	content := append([]byte("%PDF-1.7\n"), []byte("garbage garbage garbage")...)
	raw := &domain.RawDocument{
		URI:      "/docs/truncated.pdf",
		MIMEType: "application/pdf",
		Content:  content,
	}

	result, err := New().Extract(context.Background(), raw)
	assert.ErrorIs(t, err, domain.ErrExtraction)
	assert.Nil(t, result)
}

func TestExtract_EmptyContent(t *testing.T) {
	raw := &domain.RawDocument{
		URI:      "/docs/empty.pdf",
		MIMEType: "application/pdf",
		Content:  []byte{},
	}

	result, err := New().Extract(context.Background(), raw)
	assert.ErrorIs(t, err, domain.ErrExtraction)
	assert.Nil(t, result)
}
