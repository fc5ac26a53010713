package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/pdfchat/internal/apperr"
	"github.com/nikhilbhutani/pdfchat/internal/ingest"
	"github.com/nikhilbhutani/pdfchat/internal/queue"
)

type DocumentWorker struct {
	processor ingest.Processor
}

func NewDocumentWorker(p ingest.Processor) *DocumentWorker {
	return &DocumentWorker{processor: p}
}

// ProcessTask runs the pipeline for one task. Outcomes already recorded on
// the document (FAILED, not found) are final and skip asynq's retries; an
// unrecorded outcome is returned as-is so the task runs again.
func (w *DocumentWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.DocumentProcessPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	docID, err := uuid.Parse(payload.DocumentID)
	if err != nil {
		return fmt.Errorf("parse document ID: %v: %w", err, asynq.SkipRetry)
	}

	out, err := w.processor.Process(ctx, docID, payload.OwnerID)
	if err != nil {
		var pipeErr *apperr.PipelineError
		if errors.As(err, &pipeErr) || errors.Is(err, apperr.ErrNotFound) {
			slog.Warn("document task finished with failure", "document_id", docID, "error", err)
			return fmt.Errorf("process document %s: %v: %w", docID, err, asynq.SkipRetry)
		}
		return fmt.Errorf("process document %s: %w", docID, err)
	}

	slog.Info("document task done", "document_id", docID, "state", out.State, "pages", out.PageCount, "already_done", out.AlreadyDone)
	return nil
}
