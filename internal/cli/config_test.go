package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/debatelens/internal/model"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(viper.New())
	require.NoError(t, err)

	want := model.DefaultConfig()
	assert.Equal(t, want.Cascade.Layers, cfg.Cascade.Layers)
	assert.Equal(t, want.HTTP.Timeout, cfg.HTTP.Timeout)
	assert.Equal(t, want.Search.Policy, cfg.Search.Policy)
	assert.Equal(t, want.Harvest.MinChunkChars, cfg.Harvest.MinChunkChars)
	assert.Equal(t, want.Pipeline.Deadline, cfg.Pipeline.Deadline)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("DEBATELENS_SEARCH_POLICY", "single")
	t.Setenv("DEBATELENS_HTTP_TIMEOUT", "3s")
	t.Setenv("DEBATELENS_CONCURRENCY_CLAIM_WORKERS", "6")

	cfg, err := loadConfig(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "single", cfg.Search.Policy)
	assert.Equal(t, 3*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 6, cfg.Concurrency.ClaimWorkers)
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
cascade:
  layers: [authoritative, scientific, modal]
oracle:
  primary:
    provider: Anthropic
    model: claude-3-haiku
`), 0o600))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	t.Setenv("HF_API_TOKEN", "hf_test")

	cfg, err := loadConfig(v)
	require.NoError(t, err)

	assert.Equal(t, []string{"authoritative", "scientific", "modal"}, cfg.Cascade.Layers)
	assert.Equal(t, "anthropic", cfg.Oracle.Primary.Provider)
	assert.Equal(t, "sk-ant-test", cfg.Oracle.Primary.APIKey)
	assert.Equal(t, "hf_test", cfg.Oracle.ZeroShot.Token)
	// Keys absent from the file keep their defaults
	assert.Equal(t, model.DefaultConfig().Search.MaxResults, cfg.Search.MaxResults)
}

func TestLoadConfig_ExplicitKeyWins(t *testing.T) {
	t.Setenv("DEBATELENS_ORACLE_PRIMARY_PROVIDER", "openai")
	t.Setenv("DEBATELENS_ORACLE_PRIMARY_API_KEY", "sk-explicit")
	t.Setenv("OPENAI_API_KEY", "sk-conventional")

	cfg, err := loadConfig(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "sk-explicit", cfg.Oracle.Primary.APIKey)
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, writeDefaultConfig(path))
	assert.Error(t, writeDefaultConfig(path), "existing file must not be overwritten")

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultConfig().Cascade.Layers, cfg.Cascade.Layers)
}

func TestCollectClaims(t *testing.T) {
	path := filepath.Join(t.TempDir(), "claims.txt")
	require.NoError(t, os.WriteFile(path, []byte("First claim.\nSecond claim.\n"), 0o600))

	claimFlags = []string{"Third claim.", "  "}
	t.Cleanup(func() { claimFlags = nil })

	claims, err := collectClaims([]string{path})
	require.NoError(t, err)
	require.Len(t, claims, 3)
	assert.Equal(t, model.Claim{ID: 3, Text: "Third claim."}, claims[2])

	claimFlags = nil
	_, err = collectClaims(nil)
	assert.Error(t, err)
}
