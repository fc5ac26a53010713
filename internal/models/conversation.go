package models

import (
	"time"

	"github.com/google/uuid"
)

type ConversationTurn struct {
	ID            uuid.UUID `json:"id" db:"id"`
	DocumentID    uuid.UUID `json:"document_id" db:"document_id"`
	OwnerID       string    `json:"-" db:"owner_id"`
	IsUserMessage bool      `json:"is_user_message" db:"is_user_message"`
	Text          string    `json:"text" db:"text"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
