package ai

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

// ErrPromptNotFound is returned for an unknown agent type or template key.
var ErrPromptNotFound = errors.New("prompt not found")

// Template keys shared across bundles.
const (
	KeySystem = "system"

	KeyTopicDescription          = "topic_description"
	KeyVerifyMotivation          = "verify_motivation"
	KeySelectAction              = "select_action"
	KeySelectActionContemplation = "select_action_contemplation"
	KeySelectActionPreparation   = "select_action_preparation"
	KeySelectInformationInform   = "select_information_inform"
	KeySelectInformationDownplay = "select_information_downplay"
	KeySelectInformationBlame    = "select_information_blame"
	KeySelectInformationHesitate = "select_information_hesitate"
	KeyEngageInstruction         = "engage_instruction"
	KeyStateInstruction          = "state_instruction"
	KeyActionInstruction         = "action_instruction"
	KeyReplyInstruction          = "reply_instruction"
)

// PromptBundle is the set of templates one agent type renders. Templates use
// eino's FString syntax, so literal braces must be doubled.
type PromptBundle struct {
	AgentType string
	Templates map[string]string
}

// Has reports whether the bundle defines key.
func (b PromptBundle) Has(key string) bool {
	_, ok := b.Templates[key]
	return ok
}

// Render formats one template with vars.
func (b PromptBundle) Render(ctx context.Context, key string, vars map[string]any) (string, error) {
	text, ok := b.Templates[key]
	if !ok {
		return "", fmt.Errorf("%w: %s/%s", ErrPromptNotFound, b.AgentType, key)
	}

	tpl := prompt.FromMessages(schema.FString, schema.SystemMessage(text))
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("failed to render %s/%s: %w", b.AgentType, key, err)
	}
	if len(msgs) == 0 {
		return "", nil
	}
	return msgs[0].Content, nil
}

// PromptRegistry maps agent types to bundles.
type PromptRegistry struct {
	mu      sync.RWMutex
	bundles map[string]PromptBundle
}

// NewPromptRegistry creates a registry holding bundles.
func NewPromptRegistry(bundles ...PromptBundle) *PromptRegistry {
	r := &PromptRegistry{bundles: make(map[string]PromptBundle, len(bundles))}
	for _, b := range bundles {
		r.Register(b)
	}
	return r
}

// DefaultPrompts returns the built-in bundles.
func DefaultPrompts() *PromptRegistry {
	return NewPromptRegistry(
		PromptBundle{AgentType: "consistentmi", Templates: consistentMITemplates},
		PromptBundle{AgentType: "basic", Templates: basicClientTemplates},
		PromptBundle{AgentType: "therapist", Templates: therapistTemplates},
		PromptBundle{AgentType: "evaluator", Templates: evaluatorTemplates},
	)
}

// Register adds or replaces a bundle.
func (r *PromptRegistry) Register(b PromptBundle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bundles[b.AgentType] = b
}

// Bundle looks up the bundle for agentType.
func (r *PromptRegistry) Bundle(agentType string) (PromptBundle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bundles[agentType]
	if !ok {
		return PromptBundle{}, fmt.Errorf("%w: %s", ErrPromptNotFound, agentType)
	}
	return b, nil
}

// AgentTypes lists registered agent types in sorted order.
func (r *PromptRegistry) AgentTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.bundles))
	for k := range r.bundles {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ActionDescriptions explains each client action to the reply model.
var ActionDescriptions = map[string]string{
	"Deny":        "Deny that the behavior is a problem at all.",
	"Downplay":    "Admit something is going on but minimize how serious it is.",
	"Blame":       "Put the responsibility for the behavior on other people or circumstances.",
	"Inform":      "Share a relevant fact about yourself and your life.",
	"Engage":      "Respond cooperatively to what the counselor just said without adding new facts.",
	"Hesitate":    "Express uncertainty about changing, grounded in one of your beliefs.",
	"Doubt":       "Question whether change is possible or worth the effort.",
	"Acknowledge": "Acknowledge that the behavior affects what you care about most.",
	"Reject":      "Turn down the plan the counselor is proposing.",
	"Accept":      "Agree to the plan the counselor is proposing.",
	"Plan":        "Propose a concrete plan you would be willing to try.",
	"Terminate":   "Make it clear you want to end the session now.",
}

var consistentMITemplates = map[string]string{
	KeySystem: `You are {name}, a client in a motivational interviewing session about {behavior}. The counselor wants to talk about {goal}.
Stay in character. Speak in the first person, keep replies to one to three sentences, and never speak for the counselor.
Things that are true about you:
{personas_and_beliefs}`,

	KeyTopicDescription: `A conversation about {behavior} and how it relates to {goal}, focusing on {topic}.`,

	KeyVerifyMotivation: `The counselor is talking with a client about {goal}.
Recent conversation:
{context_block}
The client's core motivation is: {motivation}
Has the counselor directly addressed this motivation in the recent conversation?`,

	KeySelectAction: `You are choosing how a resistant client reacts next.
Recent conversation:
{recent_context}
Assign an integer weight to each action: Deny, Downplay, Blame, Inform, Engage. Higher weight means more likely.`,

	KeySelectActionContemplation: `You are choosing how a client who is weighing change reacts next.
Recent conversation:
{recent_context}
Assign an integer weight to each action: Inform, Engage, Hesitate, Doubt, Acknowledge. Higher weight means more likely.`,

	KeySelectActionPreparation: `You are choosing how a client who is ready to plan reacts next.
Recent conversation:
{recent_context}
Assign an integer weight to each action: Inform, Engage, Reject, Accept, Plan. Higher weight means more likely.`,

	KeySelectInformationInform: `The counselor just said: {utterance}
Would the following fact about the client be a natural thing to share in reply?
{information}`,

	KeySelectInformationDownplay: `The counselor just said: {utterance}
Could the client use the following belief to downplay the problem in reply?
{information}`,

	KeySelectInformationBlame: `The counselor just said: {utterance}
Could the client use the following belief to blame others in reply?
{information}`,

	KeySelectInformationHesitate: `The counselor just said: {utterance}
Could the following belief explain why the client hesitates to change?
{information}`,

	KeyEngageInstruction: `Your engagement with the counselor is {engagement_level} out of 4. The topics you care about are: {engaged_topics}. Your deepest motivation is {motivation}. The lower your engagement, the less you open up about these.`,

	KeyStateInstruction: `You are in the {stage} stage of change regarding {behavior}. The counselor's goal is {goal}.`,

	KeyActionInstruction: `Your action this turn is {action}: {action_description}`,

	KeyReplyInstruction: `Stage: {stage}. Action: {action}.
{state_instruction}
{action_instruction}
{engage_instruction}
Information to use: {information}
Motivation: {motivation}
Write the client's next reply only.`,
}

var basicClientTemplates = map[string]string{
	KeySystem: `You are {name}, a client in a counseling session about {goal}. Stay in character and answer as the client in one to three sentences.
Background:
{profile}`,
}

var therapistTemplates = map[string]string{
	KeySystem: `You are {name}, a counselor using a {approach} approach. Your style: {style}.
Guidelines:
{rules}
You are talking with {client}. Reply with one counselor turn at a time. When the session is complete, reply with exactly END.`,
}

var evaluatorTemplates = map[string]string{
	KeySystem: `You are an expert reviewer of counseling sessions. Evaluate the {target} on the dimension "{dimension}": {description}.
Rate each aspect from 1 (poor) to 5 (excellent):
{aspects}
Client profile:
{profile}
Conversation:
{conversation}`,
}
