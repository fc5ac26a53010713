package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/nikhilbhutani/pdfchat/internal/apperr"
)

// Dispatcher hands a registered document to background processing.
type Dispatcher interface {
	Dispatch(ctx context.Context, documentID uuid.UUID, owner string) error
}

type Processor interface {
	Process(ctx context.Context, documentID uuid.UUID, owner string) (*Outcome, error)
}

// InlineDispatcher processes documents on a bounded goroutine pool inside the
// API process.
type InlineDispatcher struct {
	pool      *ants.Pool
	processor Processor
	timeout   time.Duration
}

func NewInlineDispatcher(processor Processor, size int, timeout time.Duration) (*InlineDispatcher, error) {
	if size <= 0 {
		size = 4
	}
	pool, err := ants.NewPool(size, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("create ingest pool: %w", err)
	}
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &InlineDispatcher{pool: pool, processor: processor, timeout: timeout}, nil
}

// Dispatch returns as soon as the job is queued. The job runs on its own
// context so it outlives the request that registered the document.
func (d *InlineDispatcher) Dispatch(ctx context.Context, documentID uuid.UUID, owner string) error {
	err := d.pool.Submit(func() {
		jobCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()

		if _, err := d.processor.Process(jobCtx, documentID, owner); err != nil {
			var pipeErr *apperr.PipelineError
			if errors.As(err, &pipeErr) {
				return
			}
			slog.Error("inline processing failed", "document_id", documentID, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("submit document %s: %w", documentID, err)
	}
	return nil
}

func (d *InlineDispatcher) Running() int { return d.pool.Running() }

func (d *InlineDispatcher) Close() {
	d.pool.Release()
}
