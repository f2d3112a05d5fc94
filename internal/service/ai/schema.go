package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zhouzirui/z-counsel/backend/internal/analysis/motivation"
)

// Schema is a structured result the model fills in as a single JSON object.
type Schema interface {
	// Describe returns the JSON shape the model is asked to produce.
	Describe() string
}

// Response is a free-text reply.
type Response struct {
	Content string `json:"content"`
}

func (*Response) Describe() string {
	return `{"content": "<your reply as plain text>"}`
}

// BinaryAnswer is a yes/no judgement with an optional rationale.
type BinaryAnswer struct {
	Answer    bool   `json:"answer"`
	Rationale string `json:"rationale,omitempty"`
}

func (*BinaryAnswer) Describe() string {
	return `{"answer": true or false, "rationale": "<one short sentence>"}`
}

// PrecontemplationWeights is the model's weighting over the Precontemplation menu.
type PrecontemplationWeights struct {
	Deny     int `json:"Deny"`
	Downplay int `json:"Downplay"`
	Blame    int `json:"Blame"`
	Inform   int `json:"Inform"`
	Engage   int `json:"Engage"`
}

func (*PrecontemplationWeights) Describe() string {
	return describeWeights(motivation.Menu(motivation.Precontemplation))
}

// Distribution converts the weights into menu order.
func (w PrecontemplationWeights) Distribution() motivation.Distribution {
	return motivation.NewDistribution(
		motivation.Weight{Action: motivation.Deny, Value: clampWeight(w.Deny)},
		motivation.Weight{Action: motivation.Downplay, Value: clampWeight(w.Downplay)},
		motivation.Weight{Action: motivation.Blame, Value: clampWeight(w.Blame)},
		motivation.Weight{Action: motivation.Inform, Value: clampWeight(w.Inform)},
		motivation.Weight{Action: motivation.Engage, Value: clampWeight(w.Engage)},
	)
}

// ContemplationWeights is the model's weighting over the Contemplation menu.
type ContemplationWeights struct {
	Inform      int `json:"Inform"`
	Engage      int `json:"Engage"`
	Hesitate    int `json:"Hesitate"`
	Doubt       int `json:"Doubt"`
	Acknowledge int `json:"Acknowledge"`
}

func (*ContemplationWeights) Describe() string {
	return describeWeights(motivation.Menu(motivation.Contemplation))
}

func (w ContemplationWeights) Distribution() motivation.Distribution {
	return motivation.NewDistribution(
		motivation.Weight{Action: motivation.Inform, Value: clampWeight(w.Inform)},
		motivation.Weight{Action: motivation.Engage, Value: clampWeight(w.Engage)},
		motivation.Weight{Action: motivation.Hesitate, Value: clampWeight(w.Hesitate)},
		motivation.Weight{Action: motivation.Doubt, Value: clampWeight(w.Doubt)},
		motivation.Weight{Action: motivation.Acknowledge, Value: clampWeight(w.Acknowledge)},
	)
}

// PreparationWeights is the model's weighting over the Preparation menu.
type PreparationWeights struct {
	Inform int `json:"Inform"`
	Engage int `json:"Engage"`
	Reject int `json:"Reject"`
	Accept int `json:"Accept"`
	Plan   int `json:"Plan"`
}

func (*PreparationWeights) Describe() string {
	return describeWeights(motivation.Menu(motivation.Preparation))
}

func (w PreparationWeights) Distribution() motivation.Distribution {
	return motivation.NewDistribution(
		motivation.Weight{Action: motivation.Inform, Value: clampWeight(w.Inform)},
		motivation.Weight{Action: motivation.Engage, Value: clampWeight(w.Engage)},
		motivation.Weight{Action: motivation.Reject, Value: clampWeight(w.Reject)},
		motivation.Weight{Action: motivation.Accept, Value: clampWeight(w.Accept)},
		motivation.Weight{Action: motivation.Plan, Value: clampWeight(w.Plan)},
	)
}

// maxWeight bounds a single model-supplied weight so blended sums cannot overflow.
const maxWeight = 1_000_000

func clampWeight(v int) int {
	return min(max(v, 0), maxWeight)
}

func describeWeights(actions []motivation.Action) string {
	parts := make([]string, len(actions))
	for i, action := range actions {
		parts[i] = fmt.Sprintf("%q: <integer weight>", string(action))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// AspectScore is one rubric aspect rated on a 1-5 scale.
type AspectScore struct {
	Score     int    `json:"score"`
	Reasoning string `json:"reasoning,omitempty"`
}

// AspectScores collects ratings for a fixed list of aspect names.
type AspectScores struct {
	Aspects []string
	Scores  map[string]AspectScore
}

func (a *AspectScores) Describe() string {
	parts := make([]string, len(a.Aspects))
	for i, name := range a.Aspects {
		parts[i] = fmt.Sprintf("%q: {\"score\": <1-5>, \"reasoning\": \"<1-2 sentences>\"}", name)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (a *AspectScores) UnmarshalJSON(data []byte) error {
	var raw map[string]AspectScore
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	a.Scores = raw
	return nil
}
