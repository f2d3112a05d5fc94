package persona

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindClientReturnsIndependentCopy(t *testing.T) {
	clients, therapists := Seed()
	store := NewMemoryStore(clients, therapists)

	first, ok := store.FindClient("alex-smoking")
	require.True(t, ok)
	first.Beliefs = first.Beliefs[1:]

	second, ok := store.FindClient("alex-smoking")
	require.True(t, ok)
	assert.Len(t, second.Beliefs, 3)
}

func TestFindTherapistMissing(t *testing.T) {
	store := NewMemoryStore(nil, nil)
	_, ok := store.FindTherapist("nobody")
	assert.False(t, ok)
}

func TestReceptivityDefaultsToThree(t *testing.T) {
	assert.Equal(t, 3.0, ClientProfile{}.Receptivity())
	assert.InDelta(t, 4.0, ClientProfile{Suggestibilities: []float64{3, 5}}.Receptivity(), 1e-9)
}

func TestMotivationSplit(t *testing.T) {
	p := ClientProfile{Motivation: []string{"Parenting", "Role Model", "my kid"}}
	assert.Equal(t, "my kid", p.MotivationText())
	assert.Equal(t, []string{"Parenting", "Role Model"}, p.EngagedTopics())

	single := ClientProfile{Motivation: []string{"only text"}}
	assert.Empty(t, single.EngagedTopics())
}

func TestLoadClientsJSONList(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ConsistentMI.json")
	data := `[{"name": "Sam", "topic": "reducing drinking", "Behavior": "drinking",
		"Personas": ["I am a nurse."], "Beliefs": ["It helps me sleep."],
		"Acceptable Plans": ["Skip Mondays."], "Motivation": ["Health", "my sleep"],
		"suggestibilities": [2, 4]}]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	profiles, err := LoadClients(path)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "ConsistentMI-0", profiles[0].ID)
	assert.Equal(t, "consistentmi", profiles[0].AgentType)
	assert.Equal(t, []string{"Skip Mondays."}, profiles[0].AcceptablePlans)
	assert.InDelta(t, 3.0, profiles[0].Receptivity(), 1e-9)
}

func TestLoadClientsYAMLSingle(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "client.yaml")
	data := "id: kim\nname: Kim\ntopic: exercising more\nmotivation:\n  - Fitness\n  - I want to keep up with my kids\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	profiles, err := LoadClients(path)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "kim", profiles[0].ID)
	assert.Equal(t, []string{"Fitness"}, profiles[0].EngagedTopics())
}
