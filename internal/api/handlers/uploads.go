package handlers

import (
	"context"
	"net/http"

	"github.com/nikhilbhutani/pdfchat/internal/account"
	"github.com/nikhilbhutani/pdfchat/internal/admission"
	"github.com/nikhilbhutani/pdfchat/internal/models"
	"github.com/nikhilbhutani/pdfchat/internal/storage"
)

type PlanSource interface {
	PlanFor(ctx context.Context, owner string) (models.Plan, error)
}

type UploadIssuer interface {
	IssueUploadCredential(ctx context.Context, owner, fileName string, maxBytes int64) (*storage.UploadCredential, error)
}

type QuotaCounter interface {
	CountThisMonth(ctx context.Context, owner string) (int, error)
}

type UploadHandler struct {
	admission *admission.Controller
	plans     PlanSource
	issuer    UploadIssuer
	quota     QuotaCounter
}

func NewUploadHandler(ctrl *admission.Controller, plans PlanSource, issuer UploadIssuer, quota QuotaCounter) *UploadHandler {
	return &UploadHandler{admission: ctrl, plans: plans, issuer: issuer, quota: quota}
}

type validateRequest struct {
	SizeBytes   int64  `json:"sizeBytes"`
	ContentType string `json:"contentType"`
}

// Validate answers whether the caller's plan admits a file of this size and
// type. A denial is a normal 200 response.
func (h *UploadHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.plans.PlanFor(r.Context(), account.OwnerID(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.admission.Validate(req.SizeBytes, req.ContentType, p))
}

type credentialRequest struct {
	FileName    string `json:"fileName"`
	SizeBytes   int64  `json:"sizeBytes"`
	ContentType string `json:"contentType"`
}

// Credential issues a presigned upload. When the client reports size or type
// the admission check runs first; the monthly quota is always checked.
func (h *UploadHandler) Credential(w http.ResponseWriter, r *http.Request) {
	var req credentialRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()
	owner := account.OwnerID(ctx)

	p, err := h.plans.PlanFor(ctx, owner)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if req.SizeBytes != 0 || req.ContentType != "" {
		if d := h.admission.Validate(req.SizeBytes, req.ContentType, p); !d.Allow {
			writeJSON(w, http.StatusUnprocessableEntity, d)
			return
		}
	}

	used, err := h.quota.CountThisMonth(ctx, owner)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if d := h.admission.CheckQuota(used, p); !d.Allow {
		writeJSON(w, http.StatusUnprocessableEntity, d)
		return
	}

	cred, err := h.issuer.IssueUploadCredential(ctx, owner, req.FileName, p.MaxFileBytes)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"url":              cred.URL,
		"fields":           cred.Fields,
		"storageKey":       cred.StorageKey,
		"expiresInSeconds": secondsUntil(cred.ExpiresAt),
	})
}
