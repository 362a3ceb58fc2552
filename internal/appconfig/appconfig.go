// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.json"
	// defaultRequestTimeout is the default timeout for completion requests.
	defaultRequestTimeout = 120 * time.Second
	// defaultRequestDelay is the courtesy pause between consecutive completion calls.
	defaultRequestDelay = 1 * time.Second
	// defaultTrials is the number of repeated trials per (tier, case) cell in
	// experiments that replicate cells.
	defaultTrials = 5
	// defaultSeed is forwarded to the completion service for reproducibility
	// where the backing model supports it.
	defaultSeed = 42
	// defaultMaxTokens caps completion length.
	defaultMaxTokens = 2048
	// defaultTemperature is the sampling temperature for experiment runs.
	defaultTemperature = 0.7
	// apiKeyEnvVar names the environment variable holding the completion-service credential.
	apiKeyEnvVar = "OPENAI_API_KEY"
)

// ModelTier maps a named capability class to a concrete backing model.
type ModelTier struct {
	Label string `json:"label"`
	Model string `json:"model"`
}

// Config represents the top-level application configuration.
type Config struct {
	Tiers          []ModelTier `json:"tiers"`
	Debug          bool        `json:"debug"`
	TimeoutSeconds int         `json:"timeout,omitempty"`
	DelayMillis    int         `json:"delayMillis,omitempty"`
	Trials         int         `json:"trials,omitempty"`
	Seed           int         `json:"seed,omitempty"`
	MaxTokens      int         `json:"maxTokens,omitempty"`
	Temperature    float64     `json:"temperature,omitempty"`
	DataDir        string      `json:"dataDir,omitempty"`
	LogFile        string      `json:"logFile,omitempty"`
	ConfigPath     string      `json:"-"`
}

// DefaultTiers mirrors the published experimental design: three capability
// classes mapped to concrete OpenAI model identifiers.
func DefaultTiers() []ModelTier {
	return []ModelTier{
		{Label: "Small", Model: "gpt-4o-mini"},
		{Label: "Medium", Model: "gpt-4.1"},
		{Label: "Large", Model: "gpt-5"},
	}
}

// RequestTimeout returns the timeout duration for completion requests,
// falling back to the default if not specified.
func (c Config) RequestTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultRequestTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RequestDelay returns the fixed inter-request pause. The delay is a rate-limit
// courtesy, not a correctness requirement.
func (c Config) RequestDelay() time.Duration {
	if c.DelayMillis < 0 {
		return 0
	}
	if c.DelayMillis == 0 {
		return defaultRequestDelay
	}
	return time.Duration(c.DelayMillis) * time.Millisecond
}

// TrialCount returns the configured trials per cell, defaulting when unset.
func (c Config) TrialCount() int {
	if c.Trials <= 0 {
		return defaultTrials
	}
	return c.Trials
}

// SamplingSeed returns the deterministic seed forwarded to the service.
func (c Config) SamplingSeed() int {
	if c.Seed <= 0 {
		return defaultSeed
	}
	return c.Seed
}

// CompletionMaxTokens returns the completion token cap.
func (c Config) CompletionMaxTokens() int {
	if c.MaxTokens <= 0 {
		return defaultMaxTokens
	}
	return c.MaxTokens
}

// SamplingTemperature returns the sampling temperature.
func (c Config) SamplingTemperature() float64 {
	if c.Temperature <= 0 {
		return defaultTemperature
	}
	return c.Temperature
}

// DataDirPath returns the root directory for experiment output files.
func (c Config) DataDirPath() string {
	if dir := strings.TrimSpace(c.DataDir); dir != "" {
		return dir
	}
	return "elicitData"
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := c.LogFile; strings.TrimSpace(path) != "" {
		return path
	}
	return "elicit.log"
}

// APIKey resolves the completion-service credential from the process
// environment, consulting a .env file first. A missing credential is a hard
// startup error for any command that calls the service.
func APIKey() (string, error) {
	_ = godotenv.Load()
	key := strings.TrimSpace(os.Getenv(apiKeyEnvVar))
	if key == "" {
		return "", fmt.Errorf("%s not set in environment or .env file", apiKeyEnvVar)
	}
	return key, nil
}

// Load reads the application configuration from the specified path. A missing
// file yields the built-in defaults rather than an error; a malformed file is
// fatal.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	config, err := loadFromPath(path)
	if err == nil {
		config.ConfigPath = path
		return config, nil
	}

	if errors.Is(err, os.ErrNotExist) {
		return Defaults(), nil
	}

	return Config{}, fmt.Errorf("could not read config file %q: %w", path, err)
}

// Defaults returns a Config populated with the built-in experimental design.
func Defaults() Config {
	return Config{
		Tiers:          DefaultTiers(),
		TimeoutSeconds: int(defaultRequestTimeout.Seconds()),
	}
}

// loadFromPath is a helper function that loads the configuration from a specific file path.
func loadFromPath(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	if err := json.NewDecoder(file).Decode(&config); err != nil {
		return Config{}, err
	}
	if len(config.Tiers) == 0 {
		config.Tiers = DefaultTiers()
	}
	if config.TimeoutSeconds <= 0 {
		config.TimeoutSeconds = int(defaultRequestTimeout.Seconds())
	}

	return config, nil
}
