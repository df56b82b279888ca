package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"aiinsight/internal/config"
	"aiinsight/internal/llmcontracts"
)

const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIClient ходит в OpenAI-совместимый /chat/completions
// (OpenAI, OpenRouter и т.п.) со structured output через json_schema.
type OpenAIClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewOpenAIClient(cfg config.OpenAIConfig, model string, httpClient *http.Client, logger *slog.Logger) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: %w", ErrMissingAPIKey)
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIClient{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		model:      model,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Model возвращает идентификатор модели, с которым работает клиент.
func (c *OpenAIClient) Model() string {
	return c.model
}

func (c *OpenAIClient) Generate(ctx context.Context, prompt string, contract llmcontracts.Contract) (json.RawMessage, error) {
	if err := checkPrompt(prompt); err != nil {
		return nil, err
	}
	if c.model == "" {
		return nil, ErrInvalidModel
	}

	systemPrompt, err := llmcontracts.SystemPrompt(contract.Name)
	if err != nil {
		return nil, err
	}
	schema, err := contract.StrictDocument()
	if err != nil {
		return nil, err
	}

	requestBody := chatRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		ResponseFormat: &responseFormat{
			Type: "json_schema",
			JSONSchema: &jsonSchemaFormat{
				Name:   strings.ToLower(contract.Name),
				Strict: true,
				Schema: schema,
			},
		},
	}

	start := time.Now()
	content, err := c.doRequest(ctx, requestBody)
	if err != nil {
		return nil, err
	}
	if c.logger != nil {
		c.logger.Debug("openai completion",
			slog.String("model", c.model),
			slog.Int("response_len", len(content)),
			slog.Duration("duration", time.Since(start)))
	}

	return validateOutput(contract, content)
}

func (c *OpenAIClient) doRequest(ctx context.Context, body chatRequest) (string, error) {
	buf, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(buf))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		return "", &StatusError{Provider: "openai", StatusCode: resp.StatusCode, Body: bodySnippet(bodyBytes)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(bodyBytes, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("openai error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("empty response from model")
	}
	msg := parsed.Choices[0].Message
	if msg.Refusal != "" {
		return "", fmt.Errorf("model refused: %s", msg.Refusal)
	}
	if msg.Content == "" {
		return "", errors.New("empty response from model")
	}
	return msg.Content, nil
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []message       `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type       string            `json:"type"`
	JSONSchema *jsonSchemaFormat `json:"json_schema,omitempty"`
}

type jsonSchemaFormat struct {
	Name   string         `json:"name"`
	Strict bool           `json:"strict"`
	Schema map[string]any `json:"schema"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Refusal string `json:"refusal"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}
