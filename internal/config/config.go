package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Config struct {
	Port           string        `env:"PORT" envDefault:"4000"`
	HTTPAddr       string        `env:"HTTP_ADDR"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	NodeEnv        string        `env:"NODE_ENV" envDefault:"development"`
	ServeStatic    string        `env:"SERVE_STATIC" envDefault:"false"`
	StaticDir      string        `env:"STATIC_DIR" envDefault:"dist"`
	RequestTimeout time.Duration `env:"HTTP_CLIENT_TIMEOUT" envDefault:"60s"`
	MaxBodyBytes   int64         `env:"MAX_BODY_BYTES" envDefault:"102400"`
	CORSOrigins    []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	Provider       ProviderConfig
}

type ProviderConfig struct {
	Name   string `env:"INSIGHT_PROVIDER" envDefault:"openai"`
	Model  string `env:"INSIGHT_MODEL"`
	OpenAI OpenAIConfig
	Gemini GeminiConfig
}

type OpenAIConfig struct {
	APIKey  string `env:"OPENAI_API_KEY"`
	BaseURL string `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
}

type GeminiConfig struct {
	APIKey string `env:"GEMINI_API_KEY"`
}

// Load читает .env (если он есть) и переменные окружения.
// Уже выставленные переменные окружения имеют приоритет над файлом.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Provider.Name = strings.ToLower(strings.TrimSpace(cfg.Provider.Name))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate проверяет значения, которые env.Parse не может проверить сам.
func (c Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid LOG_LEVEL %q", c.LogLevel)
	}
	switch c.Provider.Name {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("invalid INSIGHT_PROVIDER %q", c.Provider.Name)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("HTTP_CLIENT_TIMEOUT must be positive")
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("MAX_BODY_BYTES must be positive")
	}
	return nil
}

// Addr возвращает адрес для прослушивания: HTTP_ADDR, иначе ":"+PORT.
func (c Config) Addr() string {
	if c.HTTPAddr != "" {
		return c.HTTPAddr
	}
	return ":" + c.Port
}

// StaticEnabled включает раздачу собранного фронтенда.
// SERVE_STATIC включает её только значением "true", остальное игнорируется.
func (c Config) StaticEnabled() bool {
	return c.NodeEnv == "production" || c.ServeStatic == "true"
}
