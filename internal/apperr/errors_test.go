package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestIsRetryable(t *testing.T) {
	base := errors.New("connection refused")

	assert.True(t, IsRetryable(Infra("s3 get object", base)))
	assert.True(t, IsRetryable(fmt.Errorf("fetch: %w", Infra("s3 get object", base))))
	assert.False(t, IsRetryable(base))
	assert.False(t, IsRetryable(Validation("File must be a PDF")))
	assert.Nil(t, Infra("noop", nil))
}

func TestPipelineErrorUnwraps(t *testing.T) {
	cause := errors.New("bad xref table")
	err := error(&PipelineError{DocumentID: uuid.New(), Stage: "extract", Err: cause})

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "extract")
}

func TestIsValidation(t *testing.T) {
	v, ok := IsValidation(fmt.Errorf("register: %w", Validation("upload not found")))
	assert.True(t, ok)
	assert.Equal(t, "upload not found", v.Reason)

	_, ok = IsValidation(ErrNotFound)
	assert.False(t, ok)
}
