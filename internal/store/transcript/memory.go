package transcript

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/z-counsel/backend/internal/model/chat"
)

// MemoryStore keeps transcripts in process memory.
type MemoryStore struct {
	mu          sync.RWMutex
	transcripts map[string]chat.Transcript
}

// NewMemoryStore bootstraps an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{transcripts: make(map[string]chat.Transcript)}
}

// Save stores t, assigning an ID and timestamp when missing.
func (s *MemoryStore) Save(_ context.Context, t chat.Transcript) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	t.Messages = append([]chat.Turn(nil), t.Messages...)

	s.mu.Lock()
	s.transcripts[t.ID] = t
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (chat.Transcript, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transcripts[id]
	if !ok {
		return chat.Transcript{}, ErrTranscriptNotFound
	}
	t.Messages = append([]chat.Turn(nil), t.Messages...)
	return t, nil
}

func (s *MemoryStore) List(_ context.Context) ([]Summary, error) {
	s.mu.RLock()
	out := make([]Summary, 0, len(s.transcripts))
	for _, t := range s.transcripts {
		out = append(out, Summarize(t))
	}
	s.mu.RUnlock()

	sortNewestFirst(out)
	return out, nil
}
