package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"aiinsight/internal/config"
)

// NewGenerator собирает генератор выбранного в конфиге провайдера.
func NewGenerator(ctx context.Context, cfg config.ProviderConfig, httpClient *http.Client, logger *slog.Logger) (Generator, error) {
	switch cfg.Name {
	case config.ProviderOpenAI:
		client, err := NewOpenAIClient(cfg.OpenAI, cfg.Model, httpClient, logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.ProviderGemini:
		client, err := NewGeminiClient(ctx, cfg.Gemini, cfg.Model, httpClient, logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Name)
	}
}
