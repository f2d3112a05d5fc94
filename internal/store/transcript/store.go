// Package transcript persists finished session transcripts.
package transcript

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/zhouzirui/z-counsel/backend/internal/model/chat"
)

// ErrTranscriptNotFound is returned when no transcript has the requested ID.
var ErrTranscriptNotFound = errors.New("transcript not found")

// Saver is the write side the session controller needs.
type Saver interface {
	Save(ctx context.Context, t chat.Transcript) error
}

// Store saves and looks up transcripts. Save on an existing ID replaces it.
type Store interface {
	Saver
	Get(ctx context.Context, id string) (chat.Transcript, error)
	List(ctx context.Context) ([]Summary, error)
}

// Summary is the listing view of a transcript.
type Summary struct {
	ID                string                 `json:"id"`
	NumTurns          int                    `json:"num_turns"`
	TerminationReason chat.TerminationReason `json:"termination_reason,omitempty"`
	CreatedAt         time.Time              `json:"created_at"`
	Evaluated         bool                   `json:"evaluated"`
}

// Summarize builds the listing view of t.
func Summarize(t chat.Transcript) Summary {
	return Summary{
		ID:                t.ID,
		NumTurns:          t.NumTurns,
		TerminationReason: t.TerminationReason,
		CreatedAt:         t.CreatedAt,
		Evaluated:         len(t.Evaluation) > 0,
	}
}

func sortNewestFirst(items []Summary) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}
