package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/pdfchat/internal/models"
)

type chanProcessor struct {
	ctxErr chan error
}

func (c chanProcessor) Process(ctx context.Context, id uuid.UUID, _ string) (*Outcome, error) {
	c.ctxErr <- ctx.Err()
	return &Outcome{DocumentID: id, State: models.StateSuccess}, nil
}

func TestInlineDispatcherOutlivesRequest(t *testing.T) {
	proc := chanProcessor{ctxErr: make(chan error, 1)}
	d, err := NewInlineDispatcher(proc, 2, time.Minute)
	require.NoError(t, err)
	defer d.Close()

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, d.Dispatch(ctx, uuid.New(), "user-a"))
	cancel()

	select {
	case err := <-proc.ctxErr:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run")
	}
}
