package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/zhouzirui/z-counsel/backend/internal/analysis/motivation"
	"github.com/zhouzirui/z-counsel/backend/internal/analysis/topic"
	"github.com/zhouzirui/z-counsel/backend/internal/metrics"
	"github.com/zhouzirui/z-counsel/backend/internal/model/persona"
	"github.com/zhouzirui/z-counsel/backend/internal/service/ai"
)

// Agent types registered by default.
const (
	TypeConsistentMI = "consistentmi"
	TypeBasicClient  = "basic"
	TypeTherapist    = "therapist"
)

// Dependencies are the shared collaborators agent factories draw on.
type Dependencies struct {
	Generator    ai.Generator
	Prompts      *ai.PromptRegistry
	Graph        *topic.Graph
	Scorer       topic.Scorer
	TopicContent map[string]string
	Metrics      *metrics.SimulationMetrics
	Rand         motivation.Rand
}

// ClientFactory builds a client agent from a profile.
type ClientFactory func(ctx context.Context, p persona.ClientProfile, deps Dependencies) (Agent, error)

// TherapistFactory builds a therapist agent from a profile.
type TherapistFactory func(ctx context.Context, p persona.TherapistProfile, deps Dependencies) (Agent, error)

// Registry selects agent implementations by agent type.
type Registry struct {
	mu         sync.RWMutex
	deps       Dependencies
	clients    map[string]ClientFactory
	therapists map[string]TherapistFactory
}

// NewRegistry creates a registry with the built-in agent types.
func NewRegistry(deps Dependencies) *Registry {
	if deps.Prompts == nil {
		deps.Prompts = ai.DefaultPrompts()
	}
	if deps.Graph == nil {
		deps.Graph = topic.DefaultGraph()
	}

	r := &Registry{
		deps:       deps,
		clients:    make(map[string]ClientFactory),
		therapists: make(map[string]TherapistFactory),
	}
	r.RegisterClient(TypeConsistentMI, newConsistentMI)
	r.RegisterClient(TypeBasicClient, newBasicClient)
	r.RegisterTherapist(TypeTherapist, newTherapist)
	return r
}

func (r *Registry) RegisterClient(agentType string, f ClientFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[normalizeType(agentType)] = f
}

func (r *Registry) RegisterTherapist(agentType string, f TherapistFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.therapists[normalizeType(agentType)] = f
}

// NewClient builds the client named by p.AgentType, ConsistentMI when unset.
func (r *Registry) NewClient(ctx context.Context, p persona.ClientProfile) (Agent, error) {
	agentType := normalizeType(p.AgentType)
	if agentType == "" {
		agentType = TypeConsistentMI
	}

	r.mu.RLock()
	f, ok := r.clients[agentType]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: client %q", ErrUnknownAgentType, p.AgentType)
	}
	return f(ctx, p, r.deps)
}

// NewTherapist builds the therapist named by p.AgentType, the prompt
// therapist when unset.
func (r *Registry) NewTherapist(ctx context.Context, p persona.TherapistProfile) (Agent, error) {
	agentType := normalizeType(p.AgentType)
	if agentType == "" {
		agentType = TypeTherapist
	}

	r.mu.RLock()
	f, ok := r.therapists[agentType]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: therapist %q", ErrUnknownAgentType, p.AgentType)
	}
	return f(ctx, p, r.deps)
}

// ClientTypes lists the registered client agent types.
func (r *Registry) ClientTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.clients))
	for k := range r.clients {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// TherapistTypes lists the registered therapist agent types.
func (r *Registry) TherapistTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.therapists))
	for k := range r.therapists {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func normalizeType(agentType string) string {
	return strings.ToLower(strings.TrimSpace(agentType))
}

func newConsistentMI(ctx context.Context, p persona.ClientProfile, deps Dependencies) (Agent, error) {
	bundle, err := deps.Prompts.Bundle(TypeConsistentMI)
	if err != nil {
		return nil, err
	}
	opts := []ClientOption{WithMetrics(deps.Metrics), WithRand(deps.Rand)}
	if deps.Scorer != nil || len(deps.TopicContent) > 0 {
		opts = append(opts, WithRelevance(deps.Scorer, deps.TopicContent))
	}
	return NewConsistentMIClient(ctx, p, bundle, deps.Generator, deps.Graph, opts...)
}

func newBasicClient(_ context.Context, p persona.ClientProfile, deps Dependencies) (Agent, error) {
	bundle, err := deps.Prompts.Bundle(TypeBasicClient)
	if err != nil {
		return nil, err
	}
	return NewBasicClient(p, bundle, deps.Generator), nil
}

func newTherapist(_ context.Context, p persona.TherapistProfile, deps Dependencies) (Agent, error) {
	bundle, err := deps.Prompts.Bundle(TypeTherapist)
	if err != nil {
		return nil, err
	}
	return NewTherapistAgent(p, bundle, deps.Generator), nil
}
