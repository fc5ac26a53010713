package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nikhilbhutani/pdfchat/internal/account"
	"github.com/nikhilbhutani/pdfchat/internal/models"
	"github.com/nikhilbhutani/pdfchat/internal/storage"
)

type DocumentService interface {
	Register(ctx context.Context, owner, name, storageKey string) (*models.Document, error)
	Get(ctx context.Context, id uuid.UUID, owner string) (*models.Document, error)
	List(ctx context.Context, owner string) ([]models.Document, error)
	GetStatus(ctx context.Context, id uuid.UUID, owner string) (models.DocumentState, error)
	DownloadURL(ctx context.Context, id uuid.UUID, owner string) (*storage.DownloadCredential, error)
	DeleteDocument(ctx context.Context, id uuid.UUID, owner string) error
}

type DocumentHandler struct {
	svc DocumentService
}

func NewDocumentHandler(svc DocumentService) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

type registerRequest struct {
	Name       string `json:"name"`
	StorageKey string `json:"storageKey"`
}

func (h *DocumentHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	doc, err := h.svc.Register(r.Context(), account.OwnerID(r.Context()), req.Name, req.StorageKey)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, doc)
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.svc.List(r.Context(), account.OwnerID(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	if docs == nil {
		docs = []models.Document{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"documents": docs})
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := documentID(w, r)
	if !ok {
		return
	}

	doc, err := h.svc.Get(r.Context(), id, account.OwnerID(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) Status(w http.ResponseWriter, r *http.Request) {
	id, ok := documentID(w, r)
	if !ok {
		return
	}

	state, err := h.svc.GetStatus(r.Context(), id, account.OwnerID(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"state": string(state)})
}

func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, ok := documentID(w, r)
	if !ok {
		return
	}

	cred, err := h.svc.DownloadURL(r.Context(), id, account.OwnerID(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"url":              cred.URL,
		"expiresInSeconds": secondsUntil(cred.ExpiresAt),
	})
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := documentID(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteDocument(r.Context(), id, account.OwnerID(r.Context())); err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// documentID parses the {id} route param. A malformed id is reported as not
// found, the same as an id the caller does not own.
func documentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return uuid.Nil, false
	}
	return id, true
}

func secondsUntil(t time.Time) int {
	s := int(time.Until(t).Round(time.Second) / time.Second)
	if s < 0 {
		return 0
	}
	return s
}
