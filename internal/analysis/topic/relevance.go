package topic

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"unicode"
)

// Scorer rates how relevant each candidate passage is to a query. Scores are
// aligned with candidates; higher means more relevant.
type Scorer interface {
	Score(ctx context.Context, query string, candidates []string) ([]float64, error)
}

// LexicalScores counts, for each candidate, how many query tokens appear in it
// as whole tokens, ignoring case.
func LexicalScores(query string, candidates []string) []float64 {
	queryTokens := tokenize(query)
	scores := make([]float64, len(candidates))
	for i, candidate := range candidates {
		vocab := make(map[string]struct{})
		for _, token := range tokenize(candidate) {
			vocab[token] = struct{}{}
		}
		for _, token := range queryTokens {
			if _, ok := vocab[token]; ok {
				scores[i]++
			}
		}
	}
	return scores
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

// Matcher finds the topics an utterance is most related to.
type Matcher struct {
	graph    *Graph
	scorer   Scorer
	topics   []string
	passages []string
}

// NewMatcher builds one passage per graph topic using describe. scorer may be
// nil, in which case lexical scoring is always used.
func NewMatcher(graph *Graph, scorer Scorer, describe func(topic string) string) *Matcher {
	topics := graph.Topics()
	passages := make([]string, len(topics))
	for i, name := range topics {
		if describe != nil {
			passages[i] = strings.TrimSpace(describe(name))
		} else {
			passages[i] = name
		}
	}
	return &Matcher{graph: graph, scorer: scorer, topics: topics, passages: passages}
}

// Graph returns the graph the matcher was built on.
func (m *Matcher) Graph() *Graph {
	return m.graph
}

// Related returns up to k topics ordered by relevance to query. Ties keep
// graph order. An empty query yields no topics.
func (m *Matcher) Related(ctx context.Context, query string, k int) []string {
	if strings.TrimSpace(query) == "" || len(m.topics) == 0 || k <= 0 {
		return nil
	}

	scores := m.score(ctx, query)
	indices := make([]int, len(scores))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, b int) bool {
		return scores[indices[a]] > scores[indices[b]]
	})

	if k > len(indices) {
		k = len(indices)
	}
	related := make([]string, 0, k)
	for _, idx := range indices[:k] {
		related = append(related, m.topics[idx])
	}
	return related
}

func (m *Matcher) score(ctx context.Context, query string) []float64 {
	if m.scorer != nil {
		scores, err := m.scorer.Score(ctx, query, m.passages)
		switch {
		case err != nil:
			log.Printf("[topic] relevance scorer failed, use lexical fallback: %v", err)
		case len(scores) != len(m.passages):
			log.Printf("[topic] relevance scorer returned %d scores for %d passages, use lexical fallback", len(scores), len(m.passages))
		default:
			return scores
		}
	}
	return LexicalScores(query, m.passages)
}

// LoadContent reads a [{"topic": ..., "content": ...}] file into a lookup
// that can enrich topic passages.
func LoadContent(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read topic content: %w", err)
	}

	var items []struct {
		Topic   string `json:"topic"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("parse topic content %s: %w", path, err)
	}

	content := make(map[string]string, len(items))
	for _, item := range items {
		if item.Topic == "" {
			continue
		}
		content[item.Topic] = item.Content
	}
	return content, nil
}
