package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/z-counsel/backend/internal/config"
	"github.com/zhouzirui/z-counsel/backend/internal/model/persona"
	"github.com/zhouzirui/z-counsel/backend/internal/service/agent"
	"github.com/zhouzirui/z-counsel/backend/internal/service/simulation"
)

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		Storage: config.StorageConfig{
			DBPath:        filepath.Join(dir, "db", "transcripts.db"),
			TranscriptDir: filepath.Join(dir, "json"),
		},
		Simulation: config.DefaultSimulationConfig(),
	}
}

func TestBuildWithoutAI(t *testing.T) {
	cfg := testConfig(t)
	a, err := Build(context.Background(), cfg, Options{Registerer: prometheus.NewRegistry()})
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Graph)
	assert.Len(t, a.Personas.Clients(), 2)

	client, err := a.Agents.NewClient(context.Background(), persona.ClientProfile{Name: "Sam", AgentType: agent.TypeBasicClient})
	require.NoError(t, err)
	_, err = client.GenerateResponse(context.Background(), "Hello")
	assert.ErrorIs(t, err, ErrAIUnavailable)
}

func TestBuildStoresThroughSQLiteAndMirror(t *testing.T) {
	cfg := testConfig(t)
	cfg.Simulation.MaxTurns = 2

	a, err := Build(context.Background(), cfg, Options{Registerer: prometheus.NewRegistry()})
	require.NoError(t, err)
	defer a.Close()

	a.Agents.RegisterClient("scripted", func(_ context.Context, p persona.ClientProfile, _ agent.Dependencies) (agent.Agent, error) {
		return agent.NewScriptedAgent(p.Name, "Fine."), nil
	})
	a.Agents.RegisterTherapist("scripted", func(_ context.Context, p persona.TherapistProfile, _ agent.Dependencies) (agent.Agent, error) {
		return agent.NewScriptedAgent(p.Name, "And then?"), nil
	})

	record, err := a.Simulation.Run(context.Background(), simulation.Request{
		ClientID:      "alex-smoking",
		TherapistID:   "mi-counselor",
		ClientType:    "scripted",
		TherapistType: "scripted",
	}, nil)
	require.NoError(t, err)

	stored, err := a.Store.Get(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.NumTurns)

	_, err = os.Stat(filepath.Join(cfg.Storage.TranscriptDir, "transcripts.json"))
	assert.NoError(t, err)
}

func TestBuildLoadsClientData(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage = config.StorageConfig{}
	path := filepath.Join(t.TempDir(), "clients.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"name":"Riley","topic":"reducing drinking","Behavior":"drinking"}]`), 0o644))
	cfg.Data.ClientDataPath = path

	a, err := Build(context.Background(), cfg, Options{Registerer: prometheus.NewRegistry()})
	require.NoError(t, err)

	p, ok := a.Personas.FindClient("clients-0")
	require.True(t, ok)
	assert.Equal(t, "Riley", p.Name)

	cfg.Data.ClientDataPath = filepath.Join(t.TempDir(), "missing.json")
	_, err = Build(context.Background(), cfg, Options{Registerer: prometheus.NewRegistry()})
	assert.Error(t, err)
}
