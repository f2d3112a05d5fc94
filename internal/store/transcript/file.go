package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/zhouzirui/z-counsel/backend/internal/model/chat"
)

// FileStore writes transcripts to one JSON file. With overwrite the file holds
// the latest transcript only; otherwise an existing file is turned into a
// list and each new transcript is appended. Saving an ID already in the file
// replaces that record in place.
type FileStore struct {
	mu        sync.Mutex
	path      string
	overwrite bool
}

func NewFileStore(path string, overwrite bool) *FileStore {
	return &FileStore{path: path, overwrite: overwrite}
}

// Path returns the output file.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Save(_ context.Context, t chat.Transcript) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	var payload any = t
	if !s.overwrite {
		existing, err := readRecords(s.path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return err
		default:
			raw, err := json.Marshal(t)
			if err != nil {
				return fmt.Errorf("encode transcript: %w", err)
			}
			records, replaced := upsertRecord(existing, t.ID, raw)
			if !replaced || len(records) > 1 {
				payload = records
			}
		}
	}

	data, err := json.MarshalIndent(payload, "", "    ")
	if err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}
	return writeFileAtomic(s.path, data)
}

func (s *FileStore) Get(ctx context.Context, id string) (chat.Transcript, error) {
	all, err := s.All(ctx)
	if err != nil {
		return chat.Transcript{}, err
	}
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].ID == id {
			return all[i], nil
		}
	}
	return chat.Transcript{}, ErrTranscriptNotFound
}

func (s *FileStore) List(ctx context.Context) ([]Summary, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, len(all))
	for i, t := range all {
		out[i] = Summarize(t)
	}
	sortNewestFirst(out)
	return out, nil
}

// All decodes every transcript in the file in file order. A missing file
// holds no transcripts.
func (s *FileStore) All(_ context.Context) ([]chat.Transcript, error) {
	s.mu.Lock()
	records, err := readRecords(s.path)
	s.mu.Unlock()
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	out := make([]chat.Transcript, 0, len(records))
	for i, raw := range records {
		var t chat.Transcript
		if err := json.Unmarshal(raw, &t); err != nil {
			return nil, fmt.Errorf("decode transcript %d in %s: %w", i, s.path, err)
		}
		out = append(out, t)
	}
	return out, nil
}

// upsertRecord replaces the record whose id matches, or appends raw.
func upsertRecord(records []json.RawMessage, id string, raw json.RawMessage) ([]json.RawMessage, bool) {
	out := make([]json.RawMessage, 0, len(records)+1)
	out = append(out, records...)
	if id != "" {
		for i, rec := range out {
			var head struct {
				ID string `json:"id"`
			}
			if json.Unmarshal(rec, &head) == nil && head.ID == id {
				out[i] = raw
				return out, true
			}
		}
	}
	return append(out, raw), false
}

// readRecords loads a file holding either one JSON object or a list of them.
func readRecords(path string) ([]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0, bytes.Equal(trimmed, []byte("null")):
		return nil, nil
	case trimmed[0] == '[':
		var list []json.RawMessage
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return list, nil
	default:
		return []json.RawMessage{json.RawMessage(trimmed)}, nil
	}
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write transcript: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close transcript: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
