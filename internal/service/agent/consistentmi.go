package agent

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/zhouzirui/z-counsel/backend/internal/analysis/motivation"
	"github.com/zhouzirui/z-counsel/backend/internal/analysis/topic"
	"github.com/zhouzirui/z-counsel/backend/internal/metrics"
	"github.com/zhouzirui/z-counsel/backend/internal/model/chat"
	"github.com/zhouzirui/z-counsel/backend/internal/model/persona"
	"github.com/zhouzirui/z-counsel/backend/internal/service/ai"
)

const (
	contextWindow  = 5
	relatedTopicsK = 5
	// engageInstructionMinTopics is how many secondary topics a client needs
	// before the reply instruction describes its motivation narrative.
	engageInstructionMinTopics = 3
)

// ConsistentMIClient is a client whose behavior is driven by an explicit
// motivational stage model. Each therapist utterance updates the stage,
// picks an action, and conditions the reply on it.
type ConsistentMIClient struct {
	profile     persona.ClientProfile
	bundle      ai.PromptBundle
	gen         ai.Generator
	matcher     *topic.Matcher
	rng         motivation.Rand
	metrics     *metrics.SimulationMetrics
	counterpart string
	system      string

	personas       []string
	beliefs        []string
	plans          []string
	engagedTopics  []string
	motivationText string
	state          motivation.State
	therapistTurns int
	hist           history
}

// ClientOption customizes a ConsistentMIClient.
type ClientOption func(*ConsistentMIClient)

// WithRand sets the sampling source.
func WithRand(rng motivation.Rand) ClientOption {
	return func(c *ConsistentMIClient) {
		if rng != nil {
			c.rng = rng
		}
	}
}

// WithMetrics records selected actions.
func WithMetrics(m *metrics.SimulationMetrics) ClientOption {
	return func(c *ConsistentMIClient) { c.metrics = m }
}

// WithRelevance scores topic passages with scorer, lexically when nil, and
// enriches each passage with content when present.
func WithRelevance(scorer topic.Scorer, content map[string]string) ClientOption {
	return func(c *ConsistentMIClient) {
		c.matcher = topic.NewMatcher(c.matcher.Graph(), scorer, c.describeTopic(content))
	}
}

// NewConsistentMIClient builds the client from a profile. The profile is
// copied; beliefs and plans consumed during a session never touch the caller's data.
func NewConsistentMIClient(ctx context.Context, p persona.ClientProfile, bundle ai.PromptBundle, gen ai.Generator, graph *topic.Graph, opts ...ClientOption) (*ConsistentMIClient, error) {
	if graph == nil {
		graph = topic.DefaultGraph()
	}
	c := &ConsistentMIClient{
		profile: p.Clone(),
		bundle:  bundle,
		gen:     gen,
		rng:     motivation.DefaultRand,
	}
	c.matcher = topic.NewMatcher(graph, nil, c.describeTopic(nil))
	for _, opt := range opts {
		opt(c)
	}

	system, err := bundle.Render(ctx, ai.KeySystem, map[string]any{
		"name":                 p.Name,
		"behavior":             p.Behavior,
		"goal":                 p.Goal,
		"personas_and_beliefs": bulletList(p.Personas, p.Beliefs),
	})
	if err != nil {
		return nil, err
	}
	c.system = system
	c.Reset()
	return c, nil
}

func (c *ConsistentMIClient) describeTopic(content map[string]string) func(string) string {
	return func(name string) string {
		desc, err := c.bundle.Render(context.Background(), ai.KeyTopicDescription, map[string]any{
			"behavior": c.profile.Behavior,
			"goal":     c.profile.Goal,
			"topic":    name,
		})
		if err != nil {
			desc = name
		}
		return strings.TrimSpace(desc) + " " + content[name]
	}
}

func (c *ConsistentMIClient) Name() string { return c.profile.Name }

func (c *ConsistentMIClient) SetCounterpart(name string) {
	c.counterpart = name
}

// Reset restores the profile data and starts a fresh state.
func (c *ConsistentMIClient) Reset() {
	p := c.profile.Clone()
	c.personas = p.Personas
	c.beliefs = p.Beliefs
	c.plans = p.AcceptablePlans
	c.engagedTopics = p.EngagedTopics()
	c.motivationText = p.MotivationText()

	stage, ok := motivation.ParseStage(p.InitialStage)
	if !ok {
		stage = motivation.Precontemplation
	}
	c.state = motivation.NewState(stage, p.Receptivity())
	c.therapistTurns = 0
	c.hist.reset()
}

// State returns a snapshot of the stage model.
func (c *ConsistentMIClient) State() motivation.State { return c.state }

// Beliefs returns the beliefs not yet consumed.
func (c *ConsistentMIClient) Beliefs() []string { return append([]string(nil), c.beliefs...) }

// Plans returns the acceptable plans not yet proposed.
func (c *ConsistentMIClient) Plans() []string { return append([]string(nil), c.plans...) }

func (c *ConsistentMIClient) GenerateResponse(ctx context.Context, msg string) (string, error) {
	c.hist.heard(msg)
	c.therapistTurns++

	c.state.ResolveBeliefs(len(c.beliefs))
	if c.state.TracksTopics() {
		c.evaluateTopicEngagement(ctx, msg)
	}

	stage := c.state.Stage
	action := c.determineAction(ctx, stage)
	log.Printf("[consistentmi] client=%s stage=%s, action=%s", c.profile.Name, stage, action)
	c.metrics.ObserveAction(string(stage), string(action))

	information := c.gatherInformation(ctx, action, msg)
	instruction, err := c.buildInstruction(ctx, stage, action, information)
	if err != nil {
		return "", err
	}

	var res ai.Response
	if err := c.gen.Generate(ctx, c.hist.messages(c.system, instruction), &res); err != nil {
		return "", fmt.Errorf("client reply: %w", err)
	}

	content := cleanReply(res.Content, []string{"Client", c.profile.Name}, []string{"Counselor", "Therapist", c.counterpart})
	c.hist.said(content)
	return content, nil
}

func (c *ConsistentMIClient) evaluateTopicEngagement(ctx context.Context, utterance string) {
	if len(c.engagedTopics) == 0 {
		return
	}
	primary := c.engagedTopics[0]

	predicted := primary
	if related := c.matcher.Related(ctx, utterance, relatedTopicsK); len(related) > 0 {
		predicted = related[0]
	}

	distance := 0.0
	if predicted != primary {
		distance = c.matcher.Graph().Distance(primary, predicted)
	}

	if verify := c.state.ObserveDistance(distance, c.therapistTurns); verify {
		if c.verifyMotivation(ctx) {
			c.state.EnterMotivation()
		}
	}
	log.Printf("[consistentmi] perceived topic=%s distance=%v engagement=%d", predicted, distance, c.state.Engagement)
}

func (c *ConsistentMIClient) verifyMotivation(ctx context.Context) bool {
	prompt, err := c.bundle.Render(ctx, ai.KeyVerifyMotivation, map[string]any{
		"goal":          c.profile.Goal,
		"context_block": c.hist.recent(contextWindow, chat.RoleClient, chat.RoleTherapist),
		"motivation":    c.motivationText,
	})
	if err != nil {
		log.Printf("[consistentmi] render motivation check failed: %v", err)
		return false
	}
	return c.askYesNo(ctx, prompt)
}

func (c *ConsistentMIClient) askYesNo(ctx context.Context, prompt string) bool {
	var answer ai.BinaryAnswer
	if err := c.gen.Generate(ctx, (&history{}).messages(prompt, ""), &answer); err != nil {
		log.Printf("[consistentmi] yes/no check failed, use false: %v", err)
		return false
	}
	return answer.Answer
}

func (c *ConsistentMIClient) determineAction(ctx context.Context, stage motivation.Stage) motivation.Action {
	switch {
	case stage == motivation.Motivation:
		return motivation.Acknowledge
	case c.state.ShouldTerminate():
		return motivation.Terminate
	}

	dist := c.estimateDistribution(ctx, stage)
	dist = motivation.ApplyConstraints(dist, motivation.Availability{
		Personas: len(c.personas) > 0,
		Beliefs:  len(c.beliefs) > 0,
		Plans:    len(c.plans) > 0,
	})
	return dist.Sample(c.rng)
}

type weightSchema interface {
	ai.Schema
	Distribution() motivation.Distribution
}

func (c *ConsistentMIClient) estimateDistribution(ctx context.Context, stage motivation.Stage) motivation.Distribution {
	var (
		key string
		out weightSchema
	)
	switch stage {
	case motivation.Contemplation:
		key, out = ai.KeySelectActionContemplation, &ai.ContemplationWeights{}
	case motivation.Preparation:
		key, out = ai.KeySelectActionPreparation, &ai.PreparationWeights{}
	default:
		key, out = ai.KeySelectAction, &ai.PrecontemplationWeights{}
	}

	dist, err := c.requestDistribution(ctx, key, out)
	if err != nil {
		log.Printf("[consistentmi] weight estimation failed for stage=%s, use fallback: %v", stage, err)
		dist = motivation.Fallback(stage)
	}
	if stage == motivation.Precontemplation {
		dist = dist.Add(motivation.ReceptivityDistribution(c.state.Receptivity))
	}
	return dist
}

func (c *ConsistentMIClient) requestDistribution(ctx context.Context, key string, out weightSchema) (motivation.Distribution, error) {
	prompt, err := c.bundle.Render(ctx, key, map[string]any{
		"recent_context": c.hist.recent(contextWindow, chat.RoleClient, chat.RoleTherapist),
	})
	if err != nil {
		return motivation.Distribution{}, err
	}
	if err := c.gen.Generate(ctx, (&history{}).messages(prompt, ""), out); err != nil {
		return motivation.Distribution{}, err
	}
	return out.Distribution(), nil
}

func (c *ConsistentMIClient) gatherInformation(ctx context.Context, action motivation.Action, utterance string) string {
	switch action {
	case motivation.Plan:
		if len(c.plans) == 0 {
			return ""
		}
		next := c.plans[0]
		c.plans = c.plans[1:]
		return next
	case motivation.Inform:
		return c.selectInformation(ctx, ai.KeySelectInformationInform, &c.personas, false, utterance)
	case motivation.Downplay:
		return c.selectInformation(ctx, ai.KeySelectInformationDownplay, &c.beliefs, false, utterance)
	case motivation.Blame:
		return c.selectInformation(ctx, ai.KeySelectInformationBlame, &c.beliefs, false, utterance)
	case motivation.Hesitate:
		return c.selectInformation(ctx, ai.KeySelectInformationHesitate, &c.beliefs, true, utterance)
	default:
		return ""
	}
}

// selectInformation asks about each candidate in order and returns the first
// accepted one, or a random candidate when none is accepted. It only runs
// when the therapist asked a question. consume removes the chosen item.
func (c *ConsistentMIClient) selectInformation(ctx context.Context, key string, pool *[]string, consume bool, utterance string) string {
	if !strings.Contains(utterance, "?") || len(*pool) == 0 {
		return ""
	}

	chosen := -1
	for i, item := range *pool {
		prompt, err := c.bundle.Render(ctx, key, map[string]any{
			"information": item,
			"utterance":   utterance,
		})
		if err != nil {
			log.Printf("[consistentmi] render information check failed: %v", err)
			break
		}
		if c.askYesNo(ctx, prompt) {
			chosen = i
			break
		}
	}
	if chosen < 0 {
		chosen = c.rng.IntN(len(*pool))
	}

	item := (*pool)[chosen]
	if consume {
		rest := make([]string, 0, len(*pool)-1)
		rest = append(rest, (*pool)[:chosen]...)
		rest = append(rest, (*pool)[chosen+1:]...)
		*pool = rest
	}
	return item
}

func (c *ConsistentMIClient) buildInstruction(ctx context.Context, stage motivation.Stage, action motivation.Action, information string) (string, error) {
	var engage string
	if len(c.engagedTopics) >= engageInstructionMinTopics {
		text, err := c.bundle.Render(ctx, ai.KeyEngageInstruction, map[string]any{
			"engagement_level": c.state.Engagement,
			"engaged_topics":   strings.Join(c.engagedTopics, ", "),
			"motivation":       c.motivationText,
		})
		if err != nil {
			return "", err
		}
		engage = strings.TrimSpace(text)
	}

	var stateInstruction string
	if stage != motivation.Motivation {
		text, err := c.bundle.Render(ctx, ai.KeyStateInstruction, map[string]any{
			"stage":    string(stage),
			"behavior": c.profile.Behavior,
			"goal":     c.profile.Goal,
		})
		if err != nil {
			return "", err
		}
		stateInstruction = strings.TrimSpace(text)
	}

	actionInstruction, err := c.bundle.Render(ctx, ai.KeyActionInstruction, map[string]any{
		"action":             string(action),
		"action_description": ai.ActionDescriptions[string(action)],
	})
	if err != nil {
		return "", err
	}

	if information == "" {
		information = "none"
	}
	instruction, err := c.bundle.Render(ctx, ai.KeyReplyInstruction, map[string]any{
		"stage":              string(stage),
		"action":             string(action),
		"engage_instruction": engage,
		"state_instruction":  stateInstruction,
		"action_instruction": strings.TrimSpace(actionInstruction),
		"information":        information,
		"motivation":         c.motivationText,
	})
	if err != nil {
		return "", err
	}

	if stage == motivation.Motivation {
		c.state.CompleteMotivation()
	}
	return instruction, nil
}
