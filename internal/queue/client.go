package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/pdfchat/internal/config"
)

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// Client is the asynq-backed ingest dispatcher.
type Client struct {
	client enqueuer
}

func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

func NewClient(cfg config.RedisConfig) *Client {
	return &Client{client: asynq.NewClient(RedisOpt(cfg))}
}

func (c *Client) Close() error {
	return c.client.Close()
}

// Dispatch enqueues processing for a document. A task already queued for the
// same document counts as success.
func (c *Client) Dispatch(ctx context.Context, documentID uuid.UUID, owner string) error {
	return c.EnqueueDocumentProcess(ctx, DocumentProcessPayload{
		DocumentID: documentID.String(),
		OwnerID:    owner,
	})
}

func (c *Client) EnqueueDocumentProcess(ctx context.Context, payload DocumentProcessPayload) error {
	err := c.enqueue(ctx, TypeDocumentProcess, payload,
		asynq.TaskID(documentTaskID(payload.DocumentID)),
		asynq.MaxRetry(5),
		asynq.Timeout(10*time.Minute),
		asynq.Queue("default"),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		slog.Debug("document already queued", "document_id", payload.DocumentID)
		return nil
	}
	return err
}

func (c *Client) enqueue(ctx context.Context, taskType string, payload interface{}, opts ...asynq.Option) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	task := asynq.NewTask(taskType, data)
	if _, err := c.client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	return nil
}
