package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "queryd.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "docs", cfg.Corpus.Dir)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, 5*time.Second, cfg.SyncTimeout())
	assert.Equal(t, 30*time.Second, cfg.AsyncTimeout())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoad_ParsesFile(t *testing.T) {
	path := writeConfig(t, `
[server]
addr = ":9000"

[corpus]
dir = "/srv/docs"

[storage]
backend = "memory"

[llm]
provider = "ollama"
model = "llama3.2"
base_url = "http://localhost:11434"
sync_timeout_seconds = 8
async_timeout_seconds = 60
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "/srv/docs", cfg.Corpus.Dir)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, "llama3.2", cfg.LLM.Model)
	assert.Equal(t, 8*time.Second, cfg.SyncTimeout())
	assert.Equal(t, 60*time.Second, cfg.AsyncTimeout())
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := writeConfig(t, "server = not toml at all [")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
[server]
addr = ":9000"

[llm]
api_key = "from-file"
`)

	t.Setenv("QUERYD_API_KEY", "from-env")
	t.Setenv("QUERYD_ADDR", ":7070")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.LLM.APIKey)
	assert.Equal(t, ":7070", cfg.Server.Addr)
}
