// Package file provides TOML-based configuration loading for queryd.
package file

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Defaults applied when the file or a field is absent.
const (
	DefaultListenAddr   = ":8080"
	DefaultDocsDir      = "docs"
	DefaultStorage      = "sqlite"
	DefaultProvider     = "gemini"
	DefaultSyncTimeout  = 5 * time.Second
	DefaultAsyncTimeout = 30 * time.Second
)

// Config is the full queryd configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Corpus  CorpusConfig  `toml:"corpus"`
	Storage StorageConfig `toml:"storage"`
	LLM     LLMConfig     `toml:"llm"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `toml:"addr"`
}

// CorpusConfig configures the document corpus.
type CorpusConfig struct {
	// Dir is the root directory of the document corpus.
	Dir string `toml:"dir"`
}

// StorageConfig configures query record persistence.
type StorageConfig struct {
	// Backend is "sqlite" or "memory".
	Backend string `toml:"backend"`

	// Dir is the sqlite data directory. Empty means the default
	// (~/.queryd/data).
	Dir string `toml:"dir"`
}

// LLMConfig configures the model provider.
type LLMConfig struct {
	// Provider is "gemini" or "ollama".
	Provider string `toml:"provider"`

	// Model overrides the provider's default model.
	Model string `toml:"model"`

	// APIKey authenticates with the provider. The QUERYD_API_KEY
	// environment variable takes precedence so keys can stay out of
	// the config file.
	APIKey string `toml:"api_key"`

	// BaseURL overrides the provider's default endpoint.
	BaseURL string `toml:"base_url"`

	// SyncTimeoutSeconds bounds the model call on the synchronous
	// request path (default 5).
	SyncTimeoutSeconds int `toml:"sync_timeout_seconds"`

	// AsyncTimeoutSeconds bounds the model call for background
	// questions (default 30).
	AsyncTimeoutSeconds int `toml:"async_timeout_seconds"`

	// RequestsPerSecond is the outbound rate limit (gemini only).
	RequestsPerSecond float64 `toml:"requests_per_second"`

	// Burst is the rate limiter burst size (gemini only).
	Burst int `toml:"burst"`
}

// Load reads configuration from the given TOML file. A missing file is
// not an error: defaults apply. QUERYD_API_KEY and QUERYD_ADDR
// environment variables override their file counterparts.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Defaults only.
		case err != nil:
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		default:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg, nil
}

// SyncTimeout returns the synchronous-path model timeout.
func (c *Config) SyncTimeout() time.Duration {
	if c.LLM.SyncTimeoutSeconds <= 0 {
		return DefaultSyncTimeout
	}
	return time.Duration(c.LLM.SyncTimeoutSeconds) * time.Second
}

// AsyncTimeout returns the background-path model timeout.
func (c *Config) AsyncTimeout() time.Duration {
	if c.LLM.AsyncTimeoutSeconds <= 0 {
		return DefaultAsyncTimeout
	}
	return time.Duration(c.LLM.AsyncTimeoutSeconds) * time.Second
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultListenAddr
	}
	if c.Corpus.Dir == "" {
		c.Corpus.Dir = DefaultDocsDir
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = DefaultStorage
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = DefaultProvider
	}
}

func (c *Config) applyEnv() {
	if key := os.Getenv("QUERYD_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}
	if addr := os.Getenv("QUERYD_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
}
