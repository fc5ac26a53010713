package workers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/pdfchat/internal/apperr"
	"github.com/nikhilbhutani/pdfchat/internal/ingest"
	"github.com/nikhilbhutani/pdfchat/internal/models"
	"github.com/nikhilbhutani/pdfchat/internal/queue"
)

type fakeProcessor struct {
	err   error
	owner string
}

func (f *fakeProcessor) Process(_ context.Context, id uuid.UUID, owner string) (*ingest.Outcome, error) {
	f.owner = owner
	if f.err != nil {
		return nil, f.err
	}
	return &ingest.Outcome{DocumentID: id, State: models.StateSuccess}, nil
}

func task(t *testing.T, id string) *asynq.Task {
	t.Helper()
	data, err := json.Marshal(queue.DocumentProcessPayload{DocumentID: id, OwnerID: "user-a"})
	require.NoError(t, err)
	return asynq.NewTask(queue.TypeDocumentProcess, data)
}

func TestProcessTask(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name      string
		err       error
		task      *asynq.Task
		wantErr   bool
		skipRetry bool
	}{
		{name: "success", task: task(t, id.String())},
		{name: "recorded failure", err: &apperr.PipelineError{DocumentID: id, Stage: "extract", Err: errors.New("bad pdf")}, task: task(t, id.String()), wantErr: true, skipRetry: true},
		{name: "not found", err: apperr.ErrNotFound, task: task(t, id.String()), wantErr: true, skipRetry: true},
		{name: "unrecorded failure", err: errors.New("record FAILED: connection reset"), task: task(t, id.String()), wantErr: true},
		{name: "bad id", task: task(t, "nope"), wantErr: true, skipRetry: true},
		{name: "bad payload", task: asynq.NewTask(queue.TypeDocumentProcess, []byte("{")), wantErr: true, skipRetry: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proc := &fakeProcessor{err: tt.err}
			err := NewDocumentWorker(proc).ProcessTask(context.Background(), tt.task)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, "user-a", proc.owner)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.skipRetry, errors.Is(err, asynq.SkipRetry))
		})
	}
}
