// Package config loads vetmaster configuration from a JSON file backend
// at $XDG_CONFIG_HOME/vetmaster/config.json, with VETMASTER_* environment
// variables overriding backend values.
package config

import (
	"errors"

	"github.com/google/uuid"
)

type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Insight InsightConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port int
}

type StorageConfig struct {
	DataDir string
}

// InsightConfig points at the external text-generation service. APIKey
// may be empty; the insight feature then degrades to its fallback text
// instead of blocking startup.
type InsightConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 4010,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Insight: InsightConfig{
			BaseURL: "https://openrouter.ai/api/v1",
			Model:   "google/gemini-3-flash-preview",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the file backend and applies environment
// overrides.
func Load() (Config, error) {
	return loadWith(newFileBackend())
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()
	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

const apiTokenKey = "server.api_token"

var errNoToken = errors.New("no API token configured; start the server once to generate it")

// EnsureAPIToken returns the bearer token protecting the local API,
// generating and persisting one on first use.
func EnsureAPIToken(b ConfigBackend) (string, error) {
	token, ok, err := b.GetString(apiTokenKey)
	if err != nil {
		return "", err
	}
	if ok && token != "" {
		return token, nil
	}
	token = uuid.New().String()
	if err := b.SetString(apiTokenKey, token); err != nil {
		return "", err
	}
	return token, nil
}

// APIToken reads the persisted bearer token without creating one.
func APIToken(b ConfigBackend) (string, error) {
	token, ok, err := b.GetString(apiTokenKey)
	if err != nil {
		return "", err
	}
	if !ok || token == "" {
		return "", errNoToken
	}
	return token, nil
}
