package transcript

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/z-counsel/backend/internal/model/chat"
)

func sample(id string, at time.Time) chat.Transcript {
	return chat.Transcript{
		ID:      id,
		Profile: map[string]any{"name": "Alex"},
		Messages: []chat.Turn{
			{Role: chat.RoleTherapist, Content: "How are you?"},
			{Role: chat.RoleClient, Content: "Fine."},
		},
		NumTurns:          1,
		TerminationReason: chat.ReasonTurnLimit,
		CreatedAt:         at,
	}
}

func TestFileStoreAppendsIntoList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "sessions.json")
	store := NewFileStore(path, false)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sample("a", time.Unix(10, 0).UTC())))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var single map[string]any
	require.NoError(t, json.Unmarshal(raw, &single), "first save writes a single object")
	assert.EqualValues(t, 1, single["num_turns"])

	require.NoError(t, store.Save(ctx, sample("b", time.Unix(20, 0).UTC())))
	require.NoError(t, store.Save(ctx, sample("c", time.Unix(30, 0).UTC())))

	raw, err = os.ReadFile(path)
	require.NoError(t, err)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(raw, &list))
	require.Len(t, list, 3)
	assert.Equal(t, "a", list[0]["id"])
	assert.Equal(t, "c", list[2]["id"])

	got, err := store.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "Fine.", got.Messages[1].Content)

	summaries, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "c", summaries[0].ID)
}

func TestFileStoreReplacesSameID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	store := NewFileStore(path, false)
	ctx := context.Background()

	first := sample("a", time.Unix(10, 0).UTC())
	require.NoError(t, store.Save(ctx, first))
	first.Evaluation = map[string]any{"cbt": "scored"}
	require.NoError(t, store.Save(ctx, first))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var single map[string]any
	require.NoError(t, json.Unmarshal(raw, &single), "still a single object")
	assert.Equal(t, "a", single["id"])
	assert.Contains(t, single, "evaluation")

	require.NoError(t, store.Save(ctx, sample("b", time.Unix(20, 0).UTC())))
	again := sample("a", time.Unix(10, 0).UTC())
	again.NumTurns = 7
	require.NoError(t, store.Save(ctx, again))

	all, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].ID, "replaced in place")
	assert.Equal(t, 7, all[0].NumTurns)
	assert.Equal(t, "b", all[1].ID)
}

func TestFileStoreOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path, true)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sample("a", time.Now())))
	require.NoError(t, store.Save(ctx, sample("b", time.Now())))

	all, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "b", all[0].ID)

	_, err = store.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrTranscriptNotFound)
}

func TestFileStoreMissingFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "none.json"), false)
	all, err := store.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	tr := sample("", time.Time{})
	require.NoError(t, store.Save(ctx, tr))
	summaries, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.NotEmpty(t, summaries[0].ID)

	got, err := store.Get(ctx, summaries[0].ID)
	require.NoError(t, err)
	got.Messages[0].Content = "mutated"

	again, _ := store.Get(ctx, summaries[0].ID)
	assert.Equal(t, "How are you?", again.Messages[0].Content)

	_, err = store.Get(ctx, "missing")
	assert.True(t, errors.Is(err, ErrTranscriptNotFound))
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "db", "transcripts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sample("old", time.Unix(100, 0).UTC())))
	require.NoError(t, store.Save(ctx, sample("new", time.Unix(200, 0).UTC())))

	got, err := store.Get(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, 1, got.NumTurns)
	assert.Equal(t, chat.ReasonTurnLimit, got.TerminationReason)
	assert.Equal(t, time.Unix(100, 0).UTC(), got.CreatedAt)
	assert.Equal(t, map[string]any{"name": "Alex"}, got.Profile)
	require.Len(t, got.Messages, 2)
	assert.Nil(t, got.Evaluation)

	got.Evaluation = map[string]any{"cbt": map[string]any{"identification": 4.0}}
	require.NoError(t, store.Save(ctx, got))

	summaries, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "new", summaries[0].ID)
	assert.True(t, summaries[1].Evaluated)
	assert.False(t, summaries[0].Evaluated)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrTranscriptNotFound)
}

type failingSaver struct{}

func (failingSaver) Save(context.Context, chat.Transcript) error { return errors.New("disk full") }

func TestTeeWritesMirrors(t *testing.T) {
	primary := NewMemoryStore()
	mirror := NewFileStore(filepath.Join(t.TempDir(), "mirror.json"), false)
	tee := NewTee(primary, mirror)
	ctx := context.Background()

	require.NoError(t, tee.Save(ctx, sample("x", time.Now())))
	_, err := tee.Get(ctx, "x")
	require.NoError(t, err)
	_, err = mirror.Get(ctx, "x")
	require.NoError(t, err)

	failing := NewTee(primary, failingSaver{}, mirror)
	require.NoError(t, failing.Save(ctx, sample("y", time.Now())), "mirror failure is not fatal")
	_, err = primary.Get(ctx, "y")
	require.NoError(t, err)
	_, err = mirror.Get(ctx, "y")
	require.NoError(t, err, "later mirrors still written")

	broken := NewTee(failingStore{}, mirror)
	assert.Error(t, broken.Save(ctx, sample("z", time.Now())))
	_, err = mirror.Get(ctx, "z")
	assert.ErrorIs(t, err, ErrTranscriptNotFound, "mirrors skipped when primary fails")
}

type failingStore struct{ failingSaver }

func (failingStore) Get(context.Context, string) (chat.Transcript, error) {
	return chat.Transcript{}, ErrTranscriptNotFound
}

func (failingStore) List(context.Context) ([]Summary, error) { return nil, nil }
