package topic

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/sashabaranov/go-openai"
)

// EmbeddingScorer scores passages by cosine similarity between embeddings
// from an OpenAI-compatible endpoint. Passage embeddings are cached because
// the topic passages do not change during a session.
type EmbeddingScorer struct {
	client *openai.Client
	model  openai.EmbeddingModel

	mu    sync.Mutex
	cache map[string][]float32
}

// NewEmbeddingScorer creates a scorer using the given client and embedding model.
func NewEmbeddingScorer(client *openai.Client, model string) *EmbeddingScorer {
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}
	return &EmbeddingScorer{
		client: client,
		model:  openai.EmbeddingModel(model),
		cache:  make(map[string][]float32),
	}
}

// Score implements Scorer.
func (s *EmbeddingScorer) Score(ctx context.Context, query string, candidates []string) ([]float64, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	missing := s.uncached(candidates)
	inputs := append([]string{query}, missing...)

	resp, err := s.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: inputs,
		Model: s.model,
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) != len(inputs) {
		return nil, fmt.Errorf("embedding count mismatch: got %d want %d", len(resp.Data), len(inputs))
	}

	vectors := make([][]float32, len(inputs))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(inputs) {
			return nil, fmt.Errorf("embedding index %d out of range", item.Index)
		}
		vectors[item.Index] = item.Embedding
	}

	s.mu.Lock()
	for i, text := range missing {
		s.cache[text] = vectors[i+1]
	}
	scores := make([]float64, len(candidates))
	for i, candidate := range candidates {
		scores[i] = cosine(vectors[0], s.cache[candidate])
	}
	s.mu.Unlock()

	return scores, nil
}

func (s *EmbeddingScorer) uncached(candidates []string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{})
	var missing []string
	for _, candidate := range candidates {
		if _, ok := s.cache[candidate]; ok {
			continue
		}
		if _, ok := seen[candidate]; ok {
			continue
		}
		seen[candidate] = struct{}{}
		missing = append(missing, candidate)
	}
	return missing
}

func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
