package agent

import (
	"context"
	"sync"
)

// ScriptedAgent replies with fixed lines in order and repeats the last line
// once the script runs out. It records every message it receives.
type ScriptedAgent struct {
	mu          sync.Mutex
	name        string
	counterpart string
	lines       []string
	next        int
	heard       []string
}

func NewScriptedAgent(name string, lines ...string) *ScriptedAgent {
	return &ScriptedAgent{name: name, lines: append([]string(nil), lines...)}
}

func (a *ScriptedAgent) Name() string { return a.name }

func (a *ScriptedAgent) SetCounterpart(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.counterpart = name
}

// Counterpart returns the name set by SetCounterpart.
func (a *ScriptedAgent) Counterpart() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.counterpart
}

func (a *ScriptedAgent) GenerateResponse(ctx context.Context, msg string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.heard = append(a.heard, msg)
	if len(a.lines) == 0 {
		return "", nil
	}
	idx := a.next
	if idx >= len(a.lines) {
		idx = len(a.lines) - 1
	} else {
		a.next++
	}
	return a.lines[idx], nil
}

// Heard returns the messages received so far.
func (a *ScriptedAgent) Heard() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.heard...)
}

func (a *ScriptedAgent) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.next = 0
	a.heard = nil
}
