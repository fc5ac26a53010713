package conversation

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/pdfchat/internal/apperr"
	"github.com/nikhilbhutani/pdfchat/internal/models"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	historyTurns    = 6
)

// Documents loads an owner-scoped document, returning apperr.ErrNotFound for
// documents the owner cannot see.
type Documents interface {
	Get(ctx context.Context, id uuid.UUID, owner string) (*models.Document, error)
}

// Answerer produces a reply to question grounded in the document's indexed
// pages. history is oldest-first.
type Answerer interface {
	Answer(ctx context.Context, documentID uuid.UUID, question string, history []models.ConversationTurn) (string, error)
}

// Screener rejects user messages before they are stored or answered.
type Screener interface {
	Screen(text string) error
}

type Page struct {
	Turns      []models.ConversationTurn `json:"turns"`
	NextCursor *string                   `json:"nextCursor,omitempty"`
}

type Exchange struct {
	Question models.ConversationTurn `json:"question"`
	Answer   models.ConversationTurn `json:"answer"`
}

type Service struct {
	repo     Repo
	docs     Documents
	answerer Answerer
	screener Screener
	now      func() time.Time
}

func NewService(repo Repo, docs Documents, answerer Answerer) *Service {
	return &Service{repo: repo, docs: docs, answerer: answerer, now: time.Now}
}

// WithScreener installs a message screen for Ask.
func (s *Service) WithScreener(sc Screener) *Service {
	s.screener = sc
	return s
}

// List returns one page of the document's turns, newest first. cursor is the
// id of the first turn to include; the returned NextCursor is the id of the
// first turn after this page, absent on the last page.
func (s *Service) List(ctx context.Context, documentID uuid.UUID, owner, cursor string, limit int) (*Page, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	var cursorID *uuid.UUID
	if cursor != "" {
		id, err := uuid.Parse(cursor)
		if err != nil {
			return nil, apperr.Validation("invalid cursor")
		}
		cursorID = &id
	}

	if _, err := s.docs.Get(ctx, documentID, owner); err != nil {
		return nil, err
	}

	turns, err := s.repo.Page(ctx, documentID, owner, cursorID, limit+1)
	if errors.Is(err, ErrUnknownCursor) {
		return nil, apperr.Validation("invalid cursor")
	}
	if err != nil {
		return nil, apperr.Infra("list turns", err)
	}

	page := &Page{Turns: turns}
	if len(turns) > limit {
		next := turns[limit].ID.String()
		page.NextCursor = &next
		page.Turns = turns[:limit]
	}
	return page, nil
}

// Ask stores the owner's question, asks the answerer with recent history and
// stores the reply. The document must have finished processing successfully.
func (s *Service) Ask(ctx context.Context, documentID uuid.UUID, owner, text string) (*Exchange, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Validation("message is required")
	}
	if s.screener != nil {
		if err := s.screener.Screen(text); err != nil {
			return nil, err
		}
	}

	doc, err := s.docs.Get(ctx, documentID, owner)
	if err != nil {
		return nil, err
	}
	if doc.State != models.StateSuccess {
		return nil, apperr.Validation("document is not ready")
	}

	recent, err := s.repo.Page(ctx, documentID, owner, nil, historyTurns)
	if err != nil {
		return nil, apperr.Infra("load history", err)
	}
	history := make([]models.ConversationTurn, len(recent))
	for i, t := range recent {
		history[len(recent)-1-i] = t
	}

	question := s.newTurn(documentID, owner, true, text)
	if err := s.repo.Append(ctx, &question); err != nil {
		return nil, apperr.Infra("store question", err)
	}

	reply, err := s.answerer.Answer(ctx, documentID, text, history)
	if err != nil {
		slog.Error("answer failed", "document_id", documentID, "error", err)
		return nil, apperr.Infra("answer question", err)
	}

	answer := s.newTurn(documentID, owner, false, reply)
	if !answer.CreatedAt.After(question.CreatedAt) {
		answer.CreatedAt = question.CreatedAt.Add(time.Microsecond)
	}
	if err := s.repo.Append(ctx, &answer); err != nil {
		return nil, apperr.Infra("store answer", err)
	}

	return &Exchange{Question: question, Answer: answer}, nil
}

func (s *Service) newTurn(documentID uuid.UUID, owner string, isUser bool, text string) models.ConversationTurn {
	return models.ConversationTurn{
		ID:            uuid.New(),
		DocumentID:    documentID,
		OwnerID:       owner,
		IsUserMessage: isUser,
		Text:          text,
		CreatedAt:     s.now().UTC().Truncate(time.Microsecond),
	}
}
