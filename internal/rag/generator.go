package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/pdfchat/internal/llm"
	"github.com/nikhilbhutani/pdfchat/internal/models"
	"github.com/nikhilbhutani/pdfchat/internal/vectorstore"
)

const (
	contextPages = 4
	systemPrompt = `Use the following pages of a PDF, and the previous conversation if needed, to answer the user's question in markdown format.
If you don't know the answer, just say that you don't know; don't try to make up an answer.
Cite pages as [Page N].`
)

type Chatter interface {
	Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error)
}

// Generator answers questions about a single document.
type Generator struct {
	retriever *Retriever
	chat      Chatter
}

func NewGenerator(r *Retriever, chat Chatter) *Generator {
	return &Generator{retriever: r, chat: chat}
}

func (g *Generator) Answer(ctx context.Context, documentID uuid.UUID, question string, history []models.ConversationTurn) (string, error) {
	pages, err := g.retriever.Retrieve(ctx, documentID, question, contextPages)
	if err != nil {
		return "", err
	}

	messages := []llm.Message{{Role: "system", Content: systemPrompt}}
	for _, t := range history {
		role := "assistant"
		if t.IsUserMessage {
			role = "user"
		}
		messages = append(messages, llm.Message{Role: role, Content: t.Text})
	}
	messages = append(messages, llm.Message{
		Role:    "user",
		Content: fmt.Sprintf("Context:\n%s\nQuestion: %s", buildContext(pages), question),
	})

	resp, err := g.chat.Chat(ctx, llm.ChatRequest{Messages: messages, Temperature: 0})
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	return resp.Content, nil
}

func buildContext(results []vectorstore.SearchResult) string {
	var sb strings.Builder
	for _, r := range results {
		fmt.Fprintf(&sb, "[Page %d]\n%s\n\n", r.PageNumber, r.Content)
	}
	return sb.String()
}
