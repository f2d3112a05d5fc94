package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strings"
)

// HumanAgent lets a person play one side from a terminal. Each incoming
// message is printed to out and the reply is read as one line from in.
type HumanAgent struct {
	name        string
	counterpart string
	scanner     *bufio.Scanner
	out         io.Writer
}

func NewHumanAgent(name string, in io.Reader, out io.Writer) *HumanAgent {
	return &HumanAgent{name: name, scanner: bufio.NewScanner(in), out: out}
}

func (a *HumanAgent) Name() string { return a.name }

func (a *HumanAgent) SetCounterpart(name string) {
	a.counterpart = name
}

// GenerateResponse blocks on input. Closed input ends the session with "end".
func (a *HumanAgent) GenerateResponse(ctx context.Context, msg string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	speaker := a.counterpart
	if speaker == "" {
		speaker = "Them"
	}
	fmt.Fprintf(a.out, "%s: %s\n%s> ", speaker, msg, a.name)

	if !a.scanner.Scan() {
		if err := a.scanner.Err(); err != nil {
			return "", fmt.Errorf("read human input: %w", err)
		}
		log.Printf("[agent] input closed for %s, ending session", a.name)
		return "end", nil
	}
	return strings.TrimSpace(a.scanner.Text()), nil
}

func (a *HumanAgent) Reset() {}
