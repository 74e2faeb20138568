package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	AnthropicAPIKey string
	OpenAIAPIKey    string
	GoogleAPIKey    string

	DefaultAdapter  string
	DefaultModel    string
	PassThreshold   int
	MaxReviewCycles int
	RunsDir         string
	PromptsFile     string

	ConfigDir string
}

// FileConfig represents the structure of ~/.docpilot/config.yaml
type FileConfig struct {
	APIKeys  APIKeysConfig  `yaml:"api_keys"`
	Pipeline PipelineConfig `yaml:"pipeline"`
}

// APIKeysConfig holds API key configuration from file.
type APIKeysConfig struct {
	Anthropic string `yaml:"anthropic"`
	OpenAI    string `yaml:"openai"`
	Google    string `yaml:"google"`
}

// PipelineConfig holds pipeline tuning from file.
type PipelineConfig struct {
	Adapter         string `yaml:"adapter"`
	Model           string `yaml:"model"`
	PassThreshold   int    `yaml:"pass_threshold"`
	MaxReviewCycles int    `yaml:"max_review_cycles"`
	RunsDir         string `yaml:"runs_dir"`
	PromptsFile     string `yaml:"prompts_file"`
}

// Load reads configuration from the config file and environment variables.
// Environment variables take precedence over file configuration. Note that
// MaxReviewCycles may legitimately end up zero here: it has no default, and
// callers must reject a run that never received one.
func Load() (*Config, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	fileConfig := loadFileConfig(filepath.Join(configDir, "config.yaml"))

	cfg := &Config{
		AnthropicAPIKey: getEnvOrDefault("ANTHROPIC_API_KEY", fileConfig.APIKeys.Anthropic),
		OpenAIAPIKey:    getEnvOrDefault("OPENAI_API_KEY", fileConfig.APIKeys.OpenAI),
		GoogleAPIKey:    getEnvOrDefault("GOOGLE_API_KEY", fileConfig.APIKeys.Google),
		DefaultAdapter:  getEnvOrDefault("DOCPILOT_ADAPTER", fileConfig.Pipeline.Adapter),
		DefaultModel:    getEnvOrDefault("DOCPILOT_MODEL", fileConfig.Pipeline.Model),
		PassThreshold:   getEnvIntOrDefault("DOCPILOT_PASS_THRESHOLD", fileConfig.Pipeline.PassThreshold),
		MaxReviewCycles: getEnvIntOrDefault("DOCPILOT_MAX_REVIEW_CYCLES", fileConfig.Pipeline.MaxReviewCycles),
		RunsDir:         getEnvOrDefault("DOCPILOT_RUNS_DIR", fileConfig.Pipeline.RunsDir),
		PromptsFile:     getEnvOrDefault("DOCPILOT_PROMPTS_FILE", fileConfig.Pipeline.PromptsFile),
		ConfigDir:       configDir,
	}

	if cfg.RunsDir == "" {
		cfg.RunsDir = filepath.Join(configDir, "runs")
	}

	return cfg, nil
}

// HasAdapter returns true if the API key for the given adapter is configured.
func (c *Config) HasAdapter(name string) bool {
	switch name {
	case "anthropic":
		return c.AnthropicAPIKey != ""
	case "openai":
		return c.OpenAIAPIKey != ""
	case "google":
		return c.GoogleAPIKey != ""
	case "mock":
		return true
	default:
		return false
	}
}

// loadFileConfig reads the config file, returning empty config if not found.
func loadFileConfig(path string) *FileConfig {
	cfg := &FileConfig{}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg // Return empty config if file doesn't exist
	}

	_ = yaml.Unmarshal(data, cfg) // Ignore parse errors, use defaults
	return cfg
}

// getEnvOrDefault returns the environment variable value if set,
// otherwise returns the default value.
func getEnvOrDefault(envVar, defaultValue string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}
	return defaultValue
}

func getEnvIntOrDefault(envVar string, defaultValue int) int {
	if val := os.Getenv(envVar); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultValue
}

func getConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	configDir := filepath.Join(home, ".docpilot")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}
	return configDir, nil
}
