package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds process-wide settings, resolved once at startup.
type Config struct {
	Port               string
	LogLevel           string
	MobSFURL           string
	MobSFAPIKey        string
	MobSFTimeout       time.Duration
	OpenAIAPIKey       string
	OpenAIBaseURL      string
	OpenAIModel        string
	OpenAITimeout      time.Duration
	CORSAllowedOrigins []string
	ParamPrefix        string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not load .env file", "err", err)
	}
	return &Config{
		Port:               getEnv("PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		MobSFURL:           getEnv("MOBSF_URL", "http://mobsf:8000"),
		MobSFAPIKey:        getEnv("MOBSF_API_KEY", ""),
		MobSFTimeout:       getEnvAsDuration("MOBSF_TIMEOUT", 30*time.Second),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", ""),
		OpenAIModel:        getEnv("OPENAI_MODEL", "gpt-4o"),
		OpenAITimeout:      getEnvAsDuration("OPENAI_TIMEOUT", 2*time.Minute),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		ParamPrefix:        strings.TrimRight(strings.TrimSpace(getEnv("PARAM_PREFIX", "")), "/"),
	}
}

// ParameterReader is satisfied by *paramstore.Client.
type ParameterReader interface {
	GetParameters(ctx context.Context, names ...string) (map[string]string, error)
}

// tokenPayload is the expected JSON shape stored in SSM for the OpenAI token.
type tokenPayload struct {
	Token string `json:"token"`
}

// ResolveSecrets fills API keys the environment left empty from the
// parameter store under ParamPrefix, in a single lookup. Keys already set are
// never overwritten.
func (c *Config) ResolveSecrets(ctx context.Context, reader ParameterReader) error {
	if c.ParamPrefix == "" {
		return nil
	}
	mobsfName := c.ParamPrefix + "/mobsf-api-key"
	openaiName := c.ParamPrefix + "/open-ai-token"

	var names []string
	if c.MobSFAPIKey == "" {
		names = append(names, mobsfName)
	}
	if c.OpenAIAPIKey == "" {
		names = append(names, openaiName)
	}
	if len(names) == 0 {
		return nil
	}
	if reader == nil {
		return errors.New("config: parameter reader must not be nil")
	}

	vals, err := reader.GetParameters(ctx, names...)
	if err != nil {
		return fmt.Errorf("config: load secrets: %w", err)
	}
	if v, ok := vals[mobsfName]; ok {
		c.MobSFAPIKey = strings.TrimSpace(v)
	}
	if raw, ok := vals[openaiName]; ok {
		var tp tokenPayload
		if err := json.Unmarshal([]byte(raw), &tp); err != nil {
			return fmt.Errorf("config: unmarshal openai token value as JSON: %w", err)
		}
		if tp.Token == "" {
			return errors.New("config: openai API token is empty")
		}
		c.OpenAIAPIKey = tp.Token
	}
	return nil
}

// Validate reports settings the relay cannot start without.
func (c *Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.MobSFURL) == "" {
		missing = append(missing, "MOBSF_URL")
	}
	if strings.TrimSpace(c.OpenAIAPIKey) == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if strings.TrimSpace(c.OpenAIModel) == "" {
		missing = append(missing, "OPENAI_MODEL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil && value > 0 {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated variable, dropping empty entries.
func getEnvAsList(key string) []string {
	var out []string
	for _, item := range strings.Split(getEnv(key, ""), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
