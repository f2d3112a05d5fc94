package ai

import (
	"context"
	"errors"
	"testing"
)

func TestRenderSubstitutesVariables(t *testing.T) {
	bundle, err := DefaultPrompts().Bundle("consistentmi")
	if err != nil {
		t.Fatalf("Bundle err: %v", err)
	}

	got, err := bundle.Render(context.Background(), KeyActionInstruction, map[string]any{
		"action":             "Deny",
		"action_description": ActionDescriptions["Deny"],
	})
	if err != nil {
		t.Fatalf("Render err: %v", err)
	}
	want := "Your action this turn is Deny: Deny that the behavior is a problem at all."
	if got != want {
		t.Fatalf("unexpected render: got %q want %q", got, want)
	}
}

func TestRenderUnknownKey(t *testing.T) {
	bundle, _ := DefaultPrompts().Bundle("therapist")
	if _, err := bundle.Render(context.Background(), KeyVerifyMotivation, nil); !errors.Is(err, ErrPromptNotFound) {
		t.Fatalf("expected ErrPromptNotFound, got %v", err)
	}
}

func TestRegistryUnknownAgentType(t *testing.T) {
	if _, err := DefaultPrompts().Bundle("eliza"); !errors.Is(err, ErrPromptNotFound) {
		t.Fatalf("expected ErrPromptNotFound, got %v", err)
	}
}

func TestConsistentMIBundleIsComplete(t *testing.T) {
	bundle, _ := DefaultPrompts().Bundle("consistentmi")
	keys := []string{
		KeySystem, KeyTopicDescription, KeyVerifyMotivation, KeySelectAction,
		KeySelectActionContemplation, KeySelectActionPreparation,
		KeySelectInformationInform, KeySelectInformationDownplay,
		KeySelectInformationBlame, KeySelectInformationHesitate,
		KeyEngageInstruction, KeyStateInstruction, KeyActionInstruction, KeyReplyInstruction,
	}
	for _, key := range keys {
		if !bundle.Has(key) {
			t.Fatalf("missing template %s", key)
		}
	}
}
