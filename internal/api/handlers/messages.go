package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/pdfchat/internal/account"
	"github.com/nikhilbhutani/pdfchat/internal/conversation"
)

type ConversationService interface {
	List(ctx context.Context, documentID uuid.UUID, owner, cursor string, limit int) (*conversation.Page, error)
	Ask(ctx context.Context, documentID uuid.UUID, owner, text string) (*conversation.Exchange, error)
}

type MessageHandler struct {
	svc ConversationService
}

func NewMessageHandler(svc ConversationService) *MessageHandler {
	return &MessageHandler{svc: svc}
}

func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := documentID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusUnprocessableEntity, "invalid limit")
			return
		}
		limit = n
	}

	page, err := h.svc.List(r.Context(), id, account.OwnerID(r.Context()), q.Get("cursor"), limit)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

type askRequest struct {
	Message string `json:"message"`
}

func (h *MessageHandler) Ask(w http.ResponseWriter, r *http.Request) {
	id, ok := documentID(w, r)
	if !ok {
		return
	}

	var req askRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ex, err := h.svc.Ask(r.Context(), id, account.OwnerID(r.Context()), req.Message)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ex)
}
