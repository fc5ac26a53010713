package vectorstore

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/pdfchat/internal/models"
)

// MemoryStore keeps namespaces in process. Used by inline mode and tests.
type MemoryStore struct {
	mu         sync.RWMutex
	namespaces map[uuid.UUID][]models.PageEmbedding
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{namespaces: make(map[uuid.UUID][]models.PageEmbedding)}
}

func (s *MemoryStore) Replace(ctx context.Context, namespace uuid.UUID, pages []models.PageEmbedding) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cp := make([]models.PageEmbedding, len(pages))
	copy(cp, pages)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.namespaces[namespace] = cp
	return nil
}

func (s *MemoryStore) Search(ctx context.Context, namespace uuid.UUID, query []float32, topK int) ([]SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = 4
	}

	s.mu.RLock()
	pages := s.namespaces[namespace]
	results := make([]SearchResult, 0, len(pages))
	for _, p := range pages {
		results = append(results, SearchResult{
			DocumentID: namespace,
			PageNumber: p.PageNumber,
			Content:    p.Content,
			Score:      cosine(query, p.Embedding),
		})
	}
	s.mu.RUnlock()

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (s *MemoryStore) DeleteNamespace(ctx context.Context, namespace uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.namespaces, namespace)
	return nil
}

func (s *MemoryStore) Count(ctx context.Context, namespace uuid.UUID) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.namespaces[namespace]), nil
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
