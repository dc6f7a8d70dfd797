// Package config provides application configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Supported LLM providers.
const (
	ProviderOpenAI    = "openai"
	ProviderLangChain = "langchain"
)

// Config holds all application configuration.
type Config struct {
	Port               string   `yaml:"port"`
	AppEnv             string   `yaml:"appEnv"`
	LogLevel           string   `yaml:"logLevel"`
	CORSAllowedOrigins []string `yaml:"corsAllowedOrigins"`
	MaxRequestBodySize int64    `yaml:"maxRequestBodyBytes"`
	GRPCHealthAddr     string   `yaml:"grpcHealthAddr"`

	LLM             LLMConfig             `yaml:"llm"`
	ConversationLog ConversationLogConfig `yaml:"conversationLog"`
}

// LLMConfig selects and configures the remote text-generation client.
type LLMConfig struct {
	Provider    string  `yaml:"provider"`
	APIKey      string  `yaml:"-"`
	BaseURL     string  `yaml:"baseURL"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
}

// ConversationLogConfig controls the NDJSON consultation audit log.
type ConversationLogConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Dir       string `yaml:"dir"`
	QueueSize int    `yaml:"queueSize"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Port:               "8080",
		AppEnv:             "production",
		LogLevel:           "info",
		CORSAllowedOrigins: []string{"*"},
		MaxRequestBodySize: 1 << 20,
		LLM: LLMConfig{
			Provider:    ProviderOpenAI,
			Model:       "gpt-4o-mini",
			Temperature: 0.7,
		},
		ConversationLog: ConversationLogConfig{
			Enabled:   false,
			Dir:       "./data/logs",
			QueueSize: 1000,
		},
	}
}

// Load reads configuration from the optional CONFIG_FILE overlay and then from
// environment variables, which take precedence.
func Load() (*Config, error) {
	cfg := Default()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.AppEnv = getEnv("APP_ENV", c.AppEnv)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.GRPCHealthAddr = getEnv("GRPC_HEALTH_ADDR", c.GRPCHealthAddr)
	c.MaxRequestBodySize = int64(getEnvInt("MAX_REQUEST_BODY_BYTES", int(c.MaxRequestBodySize)))
	if origins, ok := os.LookupEnv("CORS_ALLOWED_ORIGINS"); ok {
		c.CORSAllowedOrigins = splitList(origins)
	}

	c.LLM.Provider = strings.ToLower(getEnv("LLM_PROVIDER", c.LLM.Provider))
	c.LLM.APIKey = strings.TrimSpace(getEnv("OPENAI_API_KEY", c.LLM.APIKey))
	c.LLM.BaseURL = getEnv("OPENAI_BASE_URL", c.LLM.BaseURL)
	c.LLM.Model = getEnv("LLM_MODEL", c.LLM.Model)
	c.LLM.Temperature = getEnvFloat("LLM_TEMPERATURE", c.LLM.Temperature)

	c.ConversationLog.Enabled = getEnvBool("CONVERSATION_LOG_ENABLED", c.ConversationLog.Enabled)
	c.ConversationLog.Dir = getEnv("CONVERSATION_LOG_DIR", c.ConversationLog.Dir)
	c.ConversationLog.QueueSize = getEnvInt("CONVERSATION_LOG_QUEUE_SIZE", c.ConversationLog.QueueSize)
}

// Validate checks that all required configuration fields are set.
// The API key is deliberately not checked here; the LLM client constructor
// reports a missing key.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT cannot be empty")
	}
	if c.MaxRequestBodySize <= 0 {
		return errors.New("MAX_REQUEST_BODY_BYTES must be > 0")
	}
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderLangChain:
	default:
		return fmt.Errorf("LLM_PROVIDER %q is not supported", c.LLM.Provider)
	}
	if c.LLM.Model == "" {
		return errors.New("LLM_MODEL cannot be empty")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("LLM_TEMPERATURE must be within [0, 2], got %v", c.LLM.Temperature)
	}
	if c.ConversationLog.Enabled && c.ConversationLog.Dir == "" {
		return errors.New("CONVERSATION_LOG_DIR cannot be empty")
	}
	if c.ConversationLog.QueueSize <= 0 {
		return errors.New("CONVERSATION_LOG_QUEUE_SIZE must be > 0")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.AppEnv, "development") || strings.EqualFold(c.AppEnv, "dev")
}

// SlogLevel maps LogLevel to a slog level. Unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
