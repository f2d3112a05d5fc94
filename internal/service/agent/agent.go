// Package agent implements the conversational participants of a session.
package agent

import (
	"context"
	"errors"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/z-counsel/backend/internal/model/chat"
)

// ErrUnknownAgentType is returned by the registry for an unregistered agent type.
var ErrUnknownAgentType = errors.New("unknown agent type")

// Agent is one side of a session. GenerateResponse receives the other side's
// latest utterance and returns this side's reply.
type Agent interface {
	Name() string
	SetCounterpart(name string)
	GenerateResponse(ctx context.Context, msg string) (string, error)
	Reset()
}

type entry struct {
	self    bool
	content string
}

// history is an append-only log of what an agent heard and said. Per-turn
// instructions are never written into it.
type history struct {
	entries []entry
}

func (h *history) heard(content string) {
	h.entries = append(h.entries, entry{content: content})
}

func (h *history) said(content string) {
	h.entries = append(h.entries, entry{self: true, content: content})
}

func (h *history) reset() {
	h.entries = nil
}

// messages renders the log for the model: system prompt, then the log, then
// the pending instruction if any.
func (h *history) messages(system, pending string) []*schema.Message {
	out := make([]*schema.Message, 0, len(h.entries)+2)
	if system != "" {
		out = append(out, schema.SystemMessage(system))
	}
	for _, e := range h.entries {
		if e.self {
			out = append(out, schema.AssistantMessage(e.content, nil))
		} else {
			out = append(out, schema.UserMessage(e.content))
		}
	}
	if pending != "" {
		out = append(out, schema.UserMessage(pending))
	}
	return out
}

// recent renders the last n entries as "Role: content" lines.
func (h *history) recent(n int, self, other chat.Role) string {
	start := len(h.entries) - n
	if start < 0 {
		start = 0
	}
	turns := make([]chat.Turn, 0, len(h.entries)-start)
	for _, e := range h.entries[start:] {
		role := other
		if e.self {
			role = self
		}
		turns = append(turns, chat.Turn{Role: role, Content: e.content})
	}
	return chat.FormatLines(turns) + "\n"
}

// cleanReply strips a leading speaker label and cuts the reply where the model
// starts writing the other side's lines.
func cleanReply(text string, own, stops []string) string {
	out := strings.TrimSpace(text)
	for _, prefix := range own {
		out = chat.StripSpeaker(out, prefix)
	}
	for _, stop := range stops {
		if stop == "" {
			continue
		}
		if idx := strings.Index(out, stop+":"); idx >= 0 {
			out = out[:idx]
		}
	}
	return strings.TrimSpace(out)
}

func bulletList(items ...[]string) string {
	var lines []string
	for _, group := range items {
		for _, item := range group {
			lines = append(lines, "- "+item)
		}
	}
	return strings.Join(lines, "\n")
}
