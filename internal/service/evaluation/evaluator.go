// Package evaluation scores finished transcripts against counseling rubrics
// with an LLM judge.
package evaluation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/z-counsel/backend/internal/metrics"
	"github.com/zhouzirui/z-counsel/backend/internal/model/chat"
	"github.com/zhouzirui/z-counsel/backend/internal/service/ai"
)

var (
	ErrUnknownDimension = errors.New("unknown evaluation dimension")
	ErrEmptyTranscript  = errors.New("transcript has no messages")
)

const (
	minScore = 1
	maxScore = 5
)

// Dimension is one rubric: a set of aspects judged about either the client
// or the therapist.
type Dimension struct {
	Name        string    `json:"name"`
	Target      chat.Role `json:"target"`
	Description string    `json:"description"`
	Aspects     []string  `json:"aspects"`
}

var dimensions = map[string]Dimension{
	"consistency": {
		Name:        "consistency",
		Target:      chat.RoleClient,
		Description: "how faithfully the client stays in character",
		Aspects:     []string{"profile_factual", "conv_factual", "behavioral", "emotional"},
	},
	"resistance": {
		Name:        "resistance",
		Target:      chat.RoleClient,
		Description: "how realistically the client resists or accepts change",
		Aspects:     []string{"engagement", "agreeableness", "self_curing", "realism"},
	},
	"cbt": {
		Name:        "cbt",
		Target:      chat.RoleTherapist,
		Description: "the therapist's use of cognitive behavioral techniques",
		Aspects:     []string{"identification", "socratic_questioning", "homework_assignment", "cognitive_restructuring"},
	},
	"active_listening": {
		Name:        "active_listening",
		Target:      chat.RoleTherapist,
		Description: "the therapist's active listening skills",
		Aspects:     []string{"empathetic_understanding", "unconditional_regard", "congruence"},
	},
}

// Dimensions lists every known rubric ordered by name.
func Dimensions() []Dimension {
	out := make([]Dimension, 0, len(dimensions))
	for _, d := range dimensions {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Lookup returns the named rubric.
func Lookup(name string) (Dimension, error) {
	d, ok := dimensions[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Dimension{}, fmt.Errorf("%w: %s", ErrUnknownDimension, name)
	}
	return d, nil
}

// Result holds the scores of one dimension.
type Result struct {
	Dimension string                    `json:"dimension"`
	Target    chat.Role                 `json:"target"`
	Scores    map[string]ai.AspectScore `json:"scores"`
	Average   float64                   `json:"average"`
}

// Evaluator runs rubric prompts through a Generator.
type Evaluator struct {
	gen     ai.Generator
	bundle  ai.PromptBundle
	metrics *metrics.SimulationMetrics
}

// NewEvaluator builds an evaluator over the "evaluator" prompt bundle.
func NewEvaluator(gen ai.Generator, bundle ai.PromptBundle, m *metrics.SimulationMetrics) *Evaluator {
	return &Evaluator{gen: gen, bundle: bundle, metrics: m}
}

// Evaluate scores t on each named dimension. An empty list means every
// dimension. The first failing dimension aborts the run.
func (e *Evaluator) Evaluate(ctx context.Context, t chat.Transcript, names []string) (map[string]Result, error) {
	if len(t.Messages) == 0 {
		return nil, ErrEmptyTranscript
	}

	selected, err := resolve(names)
	if err != nil {
		return nil, err
	}

	profile, err := json.MarshalIndent(t.Profile, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}
	conversation := chat.FormatLines(t.Messages)

	results := make(map[string]Result, len(selected))
	for _, dim := range selected {
		res, err := e.evaluateDimension(ctx, dim, string(profile), conversation)
		e.metrics.ObserveEvaluation(dim.Name, err == nil)
		if err != nil {
			return nil, fmt.Errorf("evaluate %s: %w", dim.Name, err)
		}
		log.Printf("[evaluation] transcript=%s dimension=%s average=%.2f", t.ID, dim.Name, res.Average)
		results[dim.Name] = res
	}
	return results, nil
}

// Attach stores results on the transcript's evaluation field.
func Attach(t *chat.Transcript, results map[string]Result) {
	if t.Evaluation == nil {
		t.Evaluation = make(map[string]any, len(results))
	}
	for name, res := range results {
		t.Evaluation[name] = res
	}
}

func (e *Evaluator) evaluateDimension(ctx context.Context, dim Dimension, profile, conversation string) (Result, error) {
	system, err := e.bundle.Render(ctx, ai.KeySystem, map[string]any{
		"target":       strings.ToLower(string(dim.Target)),
		"dimension":    dim.Name,
		"description":  dim.Description,
		"aspects":      "- " + strings.Join(dim.Aspects, "\n- "),
		"profile":      profile,
		"conversation": conversation,
	})
	if err != nil {
		return Result{}, err
	}

	out := &ai.AspectScores{Aspects: dim.Aspects}
	start := time.Now()
	err = e.gen.Generate(ctx, []*schema.Message{schema.SystemMessage(system)}, out)
	e.metrics.ObserveGeneration("evaluator", time.Since(start))
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Dimension: dim.Name,
		Target:    dim.Target,
		Scores:    make(map[string]ai.AspectScore, len(dim.Aspects)),
	}
	total := 0
	for _, aspect := range dim.Aspects {
		score, ok := out.Scores[aspect]
		if !ok {
			return Result{}, fmt.Errorf("%w: missing aspect %q", ai.ErrMalformedOutput, aspect)
		}
		score.Score = clamp(score.Score)
		res.Scores[aspect] = score
		total += score.Score
	}
	res.Average = float64(total) / float64(len(dim.Aspects))
	return res, nil
}

func resolve(names []string) ([]Dimension, error) {
	if len(names) == 0 {
		return Dimensions(), nil
	}
	seen := make(map[string]bool, len(names))
	out := make([]Dimension, 0, len(names))
	for _, name := range names {
		d, err := Lookup(name)
		if err != nil {
			return nil, err
		}
		if seen[d.Name] {
			continue
		}
		seen[d.Name] = true
		out = append(out, d)
	}
	return out, nil
}

func clamp(score int) int {
	switch {
	case score < minScore:
		return minScore
	case score > maxScore:
		return maxScore
	default:
		return score
	}
}
