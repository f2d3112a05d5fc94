package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/zhouzirui/z-counsel/backend/internal/model/chat"
	"github.com/zhouzirui/z-counsel/backend/internal/model/persona"
	"github.com/zhouzirui/z-counsel/backend/internal/service/ai"
)

// PromptAgent is an agent fully described by a prompt bundle: its system
// prompt plus the running conversation go to the generator each turn.
type PromptAgent struct {
	name        string
	role        chat.Role
	counterpart string
	bundle      ai.PromptBundle
	vars        map[string]any
	gen         ai.Generator
	hist        history
	own         []string
	stops       []string
}

// NewTherapistAgent builds a counselor from a therapist profile.
func NewTherapistAgent(p persona.TherapistProfile, bundle ai.PromptBundle, gen ai.Generator) *PromptAgent {
	rules := bulletList(p.Rules)
	if rules == "" {
		rules = "- Listen carefully and reflect what the client says."
	}
	return &PromptAgent{
		name:   p.Name,
		role:   chat.RoleTherapist,
		bundle: bundle,
		gen:    gen,
		vars: map[string]any{
			"name":     p.Name,
			"approach": p.Approach,
			"style":    p.Style,
			"rules":    rules,
		},
		own:   []string{"Therapist", "Counselor", p.Name},
		stops: []string{"Client"},
	}
}

// NewBasicClient builds a client that answers from its profile alone,
// without the stage model.
func NewBasicClient(p persona.ClientProfile, bundle ai.PromptBundle, gen ai.Generator) *PromptAgent {
	profile := bulletList([]string{"Behavior: " + p.Behavior}, p.Personas, p.Beliefs)
	return &PromptAgent{
		name:   p.Name,
		role:   chat.RoleClient,
		bundle: bundle,
		gen:    gen,
		vars: map[string]any{
			"name":    p.Name,
			"goal":    p.Goal,
			"profile": profile,
		},
		own:   []string{"Client", p.Name},
		stops: []string{"Counselor", "Therapist"},
	}
}

func (a *PromptAgent) Name() string { return a.name }

// Role reports which side of the session the agent plays.
func (a *PromptAgent) Role() chat.Role { return a.role }

func (a *PromptAgent) SetCounterpart(name string) {
	a.counterpart = name
}

func (a *PromptAgent) GenerateResponse(ctx context.Context, msg string) (string, error) {
	a.hist.heard(msg)

	vars := make(map[string]any, len(a.vars)+2)
	for k, v := range a.vars {
		vars[k] = v
	}
	counterpart := a.counterpart
	if counterpart == "" {
		counterpart = "the other person"
	}
	vars["client"] = counterpart
	vars["therapist"] = counterpart

	system, err := a.bundle.Render(ctx, ai.KeySystem, vars)
	if err != nil {
		return "", err
	}

	var res ai.Response
	if err := a.gen.Generate(ctx, a.hist.messages(system, ""), &res); err != nil {
		return "", fmt.Errorf("%s reply: %w", strings.ToLower(string(a.role)), err)
	}

	content := cleanReply(res.Content, a.own, append([]string{a.counterpart}, a.stops...))
	a.hist.said(content)
	return content, nil
}

func (a *PromptAgent) Reset() {
	a.hist.reset()
}
