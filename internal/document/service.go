package document

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/pdfchat/internal/admission"
	"github.com/nikhilbhutani/pdfchat/internal/apperr"
	"github.com/nikhilbhutani/pdfchat/internal/models"
	"github.com/nikhilbhutani/pdfchat/internal/storage"
)

// Objects is the slice of the object gateway the catalog uses.
type Objects interface {
	VerifyUpload(ctx context.Context, owner, key string) error
	IssueDownloadCredential(ctx context.Context, key string, ttl time.Duration) (*storage.DownloadCredential, error)
	Release(ctx context.Context, key string) error
	Locator(key string) string
}

type PlanResolver interface {
	PlanFor(ctx context.Context, owner string) (models.Plan, error)
}

// Dispatcher schedules background processing of a registered document.
type Dispatcher interface {
	Dispatch(ctx context.Context, documentID uuid.UUID, owner string) error
}

// NamespacePurger removes every vector indexed under a document.
type NamespacePurger interface {
	DeleteNamespace(ctx context.Context, documentID uuid.UUID) error
}

type StatusCache interface {
	Get(ctx context.Context, documentID uuid.UUID, owner string) (models.DocumentState, bool, error)
	Put(ctx context.Context, documentID uuid.UUID, owner string, state models.DocumentState) error
	Invalidate(ctx context.Context, documentID uuid.UUID, owner string) error
}

type Service struct {
	repo       Repo
	objects    Objects
	plans      PlanResolver
	admission  *admission.Controller
	vectors    NamespacePurger
	statuses   StatusCache
	dispatcher Dispatcher
	now        func() time.Time
}

// NewService wires the catalog. statuses may be nil, in which case every
// status read goes to the repository.
func NewService(repo Repo, objects Objects, plans PlanResolver, vectors NamespacePurger, statuses StatusCache) *Service {
	return &Service{
		repo:      repo,
		objects:   objects,
		plans:     plans,
		admission: admission.NewController(),
		vectors:   vectors,
		statuses:  statuses,
		now:       time.Now,
	}
}

// SetDispatcher installs the processing dispatcher. It is separate from
// NewService because the inline dispatcher needs the service itself.
func (s *Service) SetDispatcher(d Dispatcher) {
	s.dispatcher = d
}

// CreateDocument records an uploaded object as a document in PROCESSING.
func (s *Service) CreateDocument(ctx context.Context, owner, name, storageKey string) (*models.Document, error) {
	if owner == "" {
		return nil, apperr.ErrUnauthorized
	}
	if storageKey == "" {
		return nil, apperr.Validation("storage key is required")
	}
	if name == "" {
		name = storageKey
	}

	doc := &models.Document{
		ID:         uuid.New(),
		OwnerID:    owner,
		Name:       name,
		StorageKey: storageKey,
		URL:        s.objects.Locator(storageKey),
		State:      models.StateProcessing,
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		if errors.Is(err, ErrDuplicateStorageKey) {
			return nil, apperr.Validation("upload already registered")
		}
		return nil, apperr.Infra("create document", err)
	}

	slog.Info("document registered", "document_id", doc.ID, "owner_id", owner)
	return doc, nil
}

// Register is the full upload-completion path: it proves the caller owns the
// uploaded key, re-checks the monthly quota, creates the record and hands it
// to the pipeline.
func (s *Service) Register(ctx context.Context, owner, name, storageKey string) (*models.Document, error) {
	if owner == "" {
		return nil, apperr.ErrUnauthorized
	}
	if storageKey == "" {
		return nil, apperr.Validation("storage key is required")
	}
	if err := s.objects.VerifyUpload(ctx, owner, storageKey); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			slog.Debug("storage key not issued to caller", "owner_id", owner, "storage_key", storageKey)
		}
		return nil, err
	}

	if err := s.checkQuota(ctx, owner); err != nil {
		return nil, err
	}

	doc, err := s.CreateDocument(ctx, owner, name, storageKey)
	if err != nil {
		return nil, err
	}

	if s.dispatcher == nil {
		return doc, nil
	}
	if err := s.dispatcher.Dispatch(ctx, doc.ID, owner); err != nil {
		slog.Error("dispatch processing failed", "document_id", doc.ID, "error", err)
		if _, ferr := s.Finish(ctx, doc.ID, owner, models.StateFailed, 0); ferr != nil {
			slog.Error("mark undispatched document failed", "document_id", doc.ID, "error", ferr)
		}
		return nil, apperr.Infra("dispatch processing", err)
	}
	return doc, nil
}

func (s *Service) checkQuota(ctx context.Context, owner string) error {
	p, err := s.plans.PlanFor(ctx, owner)
	if err != nil {
		return err
	}
	used, err := s.CountThisMonth(ctx, owner)
	if err != nil {
		return err
	}
	if d := s.admission.CheckQuota(used, p); !d.Allow {
		return apperr.Validation(d.Reason)
	}
	return nil
}

// CountThisMonth counts documents the owner created since the start of the
// current UTC calendar month.
func (s *Service) CountThisMonth(ctx context.Context, owner string) (int, error) {
	now := s.now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	n, err := s.repo.CountSince(ctx, owner, start)
	if err != nil {
		return 0, apperr.Infra("count documents", err)
	}
	return n, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID, owner string) (*models.Document, error) {
	doc, err := s.repo.Get(ctx, id, owner)
	if errors.Is(err, apperr.ErrNotFound) {
		slog.Debug("document not found for owner", "document_id", id, "owner_id", owner)
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.Infra("get document", err)
	}
	return doc, nil
}

func (s *Service) List(ctx context.Context, owner string) ([]models.Document, error) {
	docs, err := s.repo.List(ctx, owner)
	if err != nil {
		return nil, apperr.Infra("list documents", err)
	}
	return docs, nil
}

// GetStatus never reports not-found: a document the caller cannot see is
// PENDING from their point of view.
func (s *Service) GetStatus(ctx context.Context, id uuid.UUID, owner string) (models.DocumentState, error) {
	if s.statuses != nil {
		state, ok, err := s.statuses.Get(ctx, id, owner)
		if err != nil {
			slog.Warn("status cache read failed", "document_id", id, "error", err)
		} else if ok {
			return state, nil
		}
	}

	doc, err := s.Get(ctx, id, owner)
	if errors.Is(err, apperr.ErrNotFound) {
		return models.StatePending, nil
	}
	if err != nil {
		return "", err
	}

	s.cacheStatus(ctx, doc.ID, owner, doc.State)
	return doc.State, nil
}

func (s *Service) DownloadURL(ctx context.Context, id uuid.UUID, owner string) (*storage.DownloadCredential, error) {
	doc, err := s.Get(ctx, id, owner)
	if err != nil {
		return nil, err
	}
	return s.objects.IssueDownloadCredential(ctx, doc.StorageKey, 0)
}

// MarkProcessing moves a PENDING document to PROCESSING. It reports false
// when the document was not PENDING.
func (s *Service) MarkProcessing(ctx context.Context, id uuid.UUID, owner string) (bool, error) {
	ok, err := s.repo.Transition(ctx, id, owner, sourcesOf(models.StateProcessing), models.StateProcessing, 0)
	if err != nil {
		return false, apperr.Infra("mark processing", err)
	}
	return ok, nil
}

// Finish records a terminal state. Documents that are already terminal are
// left untouched and Finish reports false.
func (s *Service) Finish(ctx context.Context, id uuid.UUID, owner string, state models.DocumentState, pageCount int) (bool, error) {
	if !state.Terminal() {
		return false, apperr.Validation("state is not terminal")
	}
	ok, err := s.repo.Transition(ctx, id, owner, sourcesOf(state), state, pageCount)
	if err != nil {
		return false, apperr.Infra("finish document", err)
	}
	if ok {
		slog.Info("document processed", "document_id", id, "state", state, "pages", pageCount)
		s.cacheStatus(ctx, id, owner, state)
	}
	return ok, nil
}

// DeleteDocument removes the object, the vector namespace and the record, in
// that order. A failed step stops the sequence and is reported with the steps
// that did complete; calling it again finishes the job.
func (s *Service) DeleteDocument(ctx context.Context, id uuid.UUID, owner string) error {
	doc, err := s.Get(ctx, id, owner)
	if err != nil {
		return err
	}

	progress := &apperr.PartialDeleteError{DocumentID: id}

	if err := s.objects.Release(ctx, doc.StorageKey); err != nil {
		progress.Err = err
		return progress
	}
	progress.ObjectReleased = true

	if err := s.vectors.DeleteNamespace(ctx, id); err != nil {
		progress.Err = apperr.Infra("purge vectors", err)
		return progress
	}
	progress.VectorsPurged = true

	if _, err := s.repo.Delete(ctx, id, owner); err != nil {
		progress.Err = apperr.Infra("delete record", err)
		return progress
	}

	if s.statuses != nil {
		if err := s.statuses.Invalidate(ctx, id, owner); err != nil {
			slog.Warn("status cache invalidate failed", "document_id", id, "error", err)
		}
	}
	slog.Info("document deleted", "document_id", id, "owner_id", owner)
	return nil
}

func (s *Service) cacheStatus(ctx context.Context, id uuid.UUID, owner string, state models.DocumentState) {
	if s.statuses == nil || !state.Terminal() {
		return
	}
	if err := s.statuses.Put(ctx, id, owner, state); err != nil {
		slog.Warn("status cache write failed", "document_id", id, "error", err)
	}
}
