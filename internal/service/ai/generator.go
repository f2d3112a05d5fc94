// Package ai wraps the chat model behind a structured-output generator and
// holds the prompt bundles the agents render.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

// ErrMalformedOutput is returned when the model reply holds no decodable JSON object.
var ErrMalformedOutput = errors.New("malformed structured output")

// Generator produces one structured result from an ordered message history.
type Generator interface {
	Generate(ctx context.Context, history []*schema.Message, out Schema) error
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, history []*schema.Message, out Schema) error

func (f GeneratorFunc) Generate(ctx context.Context, history []*schema.Message, out Schema) error {
	return f(ctx, history, out)
}

// LLMGenerator runs the history through a compiled eino chain and decodes the
// JSON object in the reply into out.
type LLMGenerator struct {
	chain compose.Runnable[[]*schema.Message, *schema.Message]
}

// NewLLMGenerator compiles a chain around chatModel.
func NewLLMGenerator(ctx context.Context, chatModel model.ChatModel) (*LLMGenerator, error) {
	if chatModel == nil {
		return nil, errors.New("chat model is required")
	}

	chain := compose.NewChain[[]*schema.Message, *schema.Message]()
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile generation chain: %w", err)
	}
	return &LLMGenerator{chain: runnable}, nil
}

// Generate asks the model for out's JSON shape and decodes the reply. A
// Response target accepts a plain-text reply when no JSON object is present.
func (g *LLMGenerator) Generate(ctx context.Context, history []*schema.Message, out Schema) error {
	input := make([]*schema.Message, 0, len(history)+1)
	input = append(input, history...)
	input = append(input, schema.SystemMessage(formatInstruction(out)))

	msg, err := g.chain.Invoke(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to run generation chain: %w", err)
	}
	if msg == nil {
		return fmt.Errorf("%w: empty reply", ErrMalformedOutput)
	}

	if err := decodeJSONObject(msg.Content, out); err != nil {
		if resp, ok := out.(*Response); ok && strings.TrimSpace(msg.Content) != "" {
			log.Printf("[ai] reply is not json, use raw text: %v", err)
			resp.Content = strings.TrimSpace(msg.Content)
			return nil
		}
		return err
	}
	return nil
}

func formatInstruction(out Schema) string {
	return "Respond with a single JSON object and nothing else, using exactly this shape:\n" + out.Describe()
}

// decodeJSONObject extracts the outermost {...} span so fenced or chatty
// replies still decode.
func decodeJSONObject(content string, out any) error {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return fmt.Errorf("%w: missing json object", ErrMalformedOutput)
	}

	if err := json.Unmarshal([]byte(trimmed[start:end+1]), out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	return nil
}
