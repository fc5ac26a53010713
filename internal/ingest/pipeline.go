// Package ingest turns a registered upload into indexed pages and records the
// document's terminal state.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/pdfchat/internal/apperr"
	"github.com/nikhilbhutani/pdfchat/internal/models"
	"github.com/nikhilbhutani/pdfchat/internal/storage"
	"github.com/nikhilbhutani/pdfchat/pkg/textextract"
)

var ErrPageLimitExceeded = errors.New("page limit exceeded")

const finalWriteTimeout = 10 * time.Second

// Catalog is the document state the pipeline reads and advances.
type Catalog interface {
	Get(ctx context.Context, id uuid.UUID, owner string) (*models.Document, error)
	MarkProcessing(ctx context.Context, id uuid.UUID, owner string) (bool, error)
	Finish(ctx context.Context, id uuid.UUID, owner string, state models.DocumentState, pageCount int) (bool, error)
}

type Credentials interface {
	IssueDownloadCredential(ctx context.Context, key string, ttl time.Duration) (*storage.DownloadCredential, error)
}

type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type PageExtractor interface {
	ExtractPages(data []byte) ([]textextract.Page, error)
}

type PlanResolver interface {
	PlanFor(ctx context.Context, owner string) (models.Plan, error)
}

type Indexer interface {
	Index(ctx context.Context, documentID uuid.UUID, owner string, pages []textextract.Page) error
}

// PDFExtractor is the PageExtractor backed by pkg/textextract.
type PDFExtractor struct{}

func (PDFExtractor) ExtractPages(data []byte) ([]textextract.Page, error) {
	return textextract.ExtractPages(bytes.NewReader(data), int64(len(data)))
}

type Outcome struct {
	DocumentID uuid.UUID            `json:"document_id"`
	State      models.DocumentState `json:"state"`
	PageCount  int                  `json:"page_count"`
	// AlreadyDone is set when the document was terminal before this run.
	AlreadyDone bool `json:"already_done"`
}

type Options struct {
	RetryAttempts  int
	RetryBaseDelay time.Duration
	CredentialTTL  time.Duration
}

type Pipeline struct {
	catalog     Catalog
	credentials Credentials
	fetcher     Fetcher
	extractor   PageExtractor
	plans       PlanResolver
	indexer     Indexer
	opts        Options
}

func NewPipeline(catalog Catalog, credentials Credentials, fetcher Fetcher, extractor PageExtractor, plans PlanResolver, indexer Indexer, opts Options) *Pipeline {
	if opts.RetryAttempts <= 0 {
		opts.RetryAttempts = 3
	}
	if opts.RetryBaseDelay <= 0 {
		opts.RetryBaseDelay = 500 * time.Millisecond
	}
	if opts.CredentialTTL <= 0 {
		opts.CredentialTTL = 5 * time.Minute
	}
	return &Pipeline{
		catalog:     catalog,
		credentials: credentials,
		fetcher:     fetcher,
		extractor:   extractor,
		plans:       plans,
		indexer:     indexer,
		opts:        opts,
	}
}

// Process drives one document to SUCCESS or FAILED. Running it again on a
// finished document returns the recorded outcome without doing any work.
//
// Returned errors:
//   - apperr.ErrNotFound when owner has no such document;
//   - *apperr.PipelineError when the document was marked FAILED;
//   - any other error when the terminal state could not be written; the
//     document is still non-terminal and Process can be re-run.
func (p *Pipeline) Process(ctx context.Context, documentID uuid.UUID, owner string) (*Outcome, error) {
	doc, err := p.catalog.Get(ctx, documentID, owner)
	if err != nil {
		return nil, err
	}
	if doc.State.Terminal() {
		return &Outcome{DocumentID: doc.ID, State: doc.State, PageCount: doc.PageCount, AlreadyDone: true}, nil
	}
	if doc.State == models.StatePending {
		if _, err := p.catalog.MarkProcessing(ctx, doc.ID, owner); err != nil {
			return nil, err
		}
	}

	log := slog.With("document_id", doc.ID, "owner_id", owner)
	log.Info("processing document")

	var data []byte
	err = retry(ctx, p.opts.RetryAttempts, p.opts.RetryBaseDelay, func(int) error {
		cred, err := p.credentials.IssueDownloadCredential(ctx, doc.StorageKey, p.opts.CredentialTTL)
		if err != nil {
			return err
		}
		data, err = p.fetcher.Fetch(ctx, cred.URL)
		return err
	})
	if err != nil {
		return p.fail(ctx, doc, "download", err, 0)
	}

	pages, err := p.extractor.ExtractPages(data)
	if err != nil {
		return p.fail(ctx, doc, "extract", err, 0)
	}
	pageCount := len(pages)

	var plan models.Plan
	err = retry(ctx, p.opts.RetryAttempts, p.opts.RetryBaseDelay, func(int) error {
		var err error
		plan, err = p.plans.PlanFor(ctx, owner)
		return err
	})
	if err != nil {
		return p.fail(ctx, doc, "plan", err, pageCount)
	}
	exceeded := pageCount > plan.MaxPagesPerDocument

	err = retry(ctx, p.opts.RetryAttempts, p.opts.RetryBaseDelay, func(int) error {
		return p.indexer.Index(ctx, doc.ID, owner, pages)
	})
	if err != nil {
		return p.fail(ctx, doc, "index", err, pageCount)
	}

	if exceeded {
		cause := fmt.Errorf("%w: %d pages, %s plan allows %d", ErrPageLimitExceeded, pageCount, plan.Slug, plan.MaxPagesPerDocument)
		return p.fail(ctx, doc, "quota", cause, pageCount)
	}

	ok, err := p.catalog.Finish(detach(ctx), doc.ID, owner, models.StateSuccess, pageCount)
	if err != nil {
		return nil, fmt.Errorf("record success for document %s: %w", doc.ID, err)
	}
	if !ok {
		return p.current(ctx, doc.ID, owner)
	}
	log.Info("document indexed", "pages", pageCount)
	return &Outcome{DocumentID: doc.ID, State: models.StateSuccess, PageCount: pageCount}, nil
}

func (p *Pipeline) fail(ctx context.Context, doc *models.Document, stage string, cause error, pageCount int) (*Outcome, error) {
	slog.Warn("document processing failed", "document_id", doc.ID, "stage", stage, "error", cause)

	writeCtx, cancel := context.WithTimeout(detach(ctx), finalWriteTimeout)
	defer cancel()

	if _, err := p.catalog.Finish(writeCtx, doc.ID, doc.OwnerID, models.StateFailed, pageCount); err != nil {
		slog.Error("could not record FAILED state", "document_id", doc.ID, "stage", stage, "error", err)
		return nil, fmt.Errorf("record FAILED for document %s after %s failure (%v): %w", doc.ID, stage, cause, err)
	}

	return &Outcome{DocumentID: doc.ID, State: models.StateFailed, PageCount: pageCount},
		&apperr.PipelineError{DocumentID: doc.ID, Stage: stage, Err: cause}
}

// current reports the state another run recorded first.
func (p *Pipeline) current(ctx context.Context, id uuid.UUID, owner string) (*Outcome, error) {
	doc, err := p.catalog.Get(ctx, id, owner)
	if err != nil {
		return nil, err
	}
	return &Outcome{DocumentID: doc.ID, State: doc.State, PageCount: doc.PageCount, AlreadyDone: true}, nil
}

// detach keeps the terminal write alive when the caller's context is
// cancelled mid-run.
func detach(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}
