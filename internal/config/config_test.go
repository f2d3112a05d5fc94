package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServerConfig(t *testing.T) {
	t.Setenv("PORT", "9090")
	cfg, err := loadServerConfig()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)

	t.Setenv("PORT", "127.0.0.1:7000")
	cfg, err = loadServerConfig()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", cfg.Addr)

	t.Setenv("PORT", "80 80")
	_, err = loadServerConfig()
	assert.Error(t, err)
}

func TestLoadAIConfig(t *testing.T) {
	t.Setenv("ARK_API_KEY", "key")
	t.Setenv("Model", "doubao")
	t.Setenv("ARK_TEMPERATURE", "0.7")
	t.Setenv("ARK_MAX_TOKENS", "512")

	cfg, err := loadAIConfig()
	require.NoError(t, err)
	assert.True(t, cfg.Enabled())
	require.NotNil(t, cfg.Temperature)
	assert.InDelta(t, 0.7, *cfg.Temperature, 1e-9)
	require.NotNil(t, cfg.MaxTokens)
	assert.Equal(t, 512, *cfg.MaxTokens)

	t.Setenv("ARK_TOP_P", "high")
	_, err = loadAIConfig()
	assert.Error(t, err)
}

func TestAIConfigDisabledWithoutCredentials(t *testing.T) {
	cfg := AIConfig{Model: "doubao"}
	assert.False(t, cfg.Enabled())
	_, err := cfg.NewChatModel(t.Context())
	assert.Error(t, err)
}

func TestEmbeddingAndStorageConfig(t *testing.T) {
	t.Setenv("EMBEDDING_API_KEY", "")
	t.Setenv("TRANSCRIPT_DB_PATH", "")
	assert.False(t, loadEmbeddingConfig().Enabled())
	assert.Equal(t, "data/transcripts.db", loadStorageConfig().DBPath)

	t.Setenv("EMBEDDING_API_KEY", "sk")
	emb := loadEmbeddingConfig()
	assert.True(t, emb.Enabled())
	assert.Equal(t, "text-embedding-3-small", emb.Model)
	assert.NotNil(t, emb.NewClient())
}

func TestSimulationValidate(t *testing.T) {
	require.NoError(t, DefaultSimulationConfig().Validate())

	bad := DefaultSimulationConfig()
	bad.MaxTurns = 0
	bad.OutputPath = ""
	err := bad.Validate()
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "MaxTurns")
	assert.Contains(t, err.Error(), "OutputPath")

	neg := DefaultSimulationConfig()
	neg.ReminderTurnNum = -1
	assert.ErrorIs(t, neg.Validate(), ErrInvalidConfig)
}

func TestLoadSimulationFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.yaml")
	content := "max_turns: 12\nreminder_turn_num: 2\noutput_path: out/run.json\ncall_timeout: 45s\nclient: jordan-drinking\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("SIM_REMINDER_TURN_NUM", "3")
	cfg, err := LoadSimulationFile(path)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.MaxTurns)
	assert.Equal(t, 3, cfg.ReminderTurnNum)
	assert.Equal(t, "out/run.json", cfg.OutputPath)
	assert.Equal(t, 45*time.Second, cfg.CallTimeout)
	assert.Equal(t, "jordan-drinking", cfg.ClientID)
	assert.False(t, cfg.Overwrite)
}

func TestLoadSimulationFileRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_turns: -4\n"), 0o644))

	_, err := LoadSimulationFile(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = LoadSimulationFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
