package models

import (
	"time"

	"github.com/google/uuid"
)

type DocumentState string

const (
	StatePending    DocumentState = "PENDING"
	StateProcessing DocumentState = "PROCESSING"
	StateSuccess    DocumentState = "SUCCESS"
	StateFailed     DocumentState = "FAILED"
)

// Terminal reports whether no further transition is allowed from s.
func (s DocumentState) Terminal() bool {
	return s == StateSuccess || s == StateFailed
}

// CanTransition reports whether from -> to is a legal edge of
// PENDING -> PROCESSING -> {SUCCESS, FAILED}.
func CanTransition(from, to DocumentState) bool {
	switch from {
	case StatePending:
		return to == StateProcessing || to == StateFailed
	case StateProcessing:
		return to == StateSuccess || to == StateFailed
	default:
		return false
	}
}

type Document struct {
	ID         uuid.UUID     `json:"id" db:"id"`
	OwnerID    string        `json:"owner_id" db:"owner_id"`
	Name       string        `json:"name" db:"name"`
	StorageKey string        `json:"storage_key" db:"storage_key"`
	URL        string        `json:"url" db:"url"`
	State      DocumentState `json:"state" db:"state"`
	PageCount  int           `json:"page_count" db:"page_count"`
	CreatedAt  time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at" db:"updated_at"`
}

// PageEmbedding is one indexed page of a document. The document id is the
// namespace the page lives under.
type PageEmbedding struct {
	ID         uuid.UUID `json:"id" db:"id"`
	DocumentID uuid.UUID `json:"document_id" db:"document_id"`
	OwnerID    string    `json:"owner_id" db:"owner_id"`
	PageNumber int       `json:"page_number" db:"page_number"`
	Content    string    `json:"content" db:"content"`
	Embedding  []float32 `json:"-" db:"embedding"`
	TokenCount int       `json:"token_count" db:"token_count"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
