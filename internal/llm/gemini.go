package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"google.golang.org/genai"

	"aiinsight/internal/config"
	"aiinsight/internal/llmcontracts"
)

const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiClient генерирует ответ через Google GenAI SDK с responseSchema.
type GeminiClient struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

func NewGeminiClient(ctx context.Context, cfg config.GeminiConfig, model string, httpClient *http.Client, logger *slog.Logger) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: %w", ErrMissingAPIKey)
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiClient{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

func (c *GeminiClient) Model() string {
	return c.model
}

func (c *GeminiClient) Generate(ctx context.Context, prompt string, contract llmcontracts.Contract) (json.RawMessage, error) {
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
	doc, err := contract.Document()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    toGenAISchema(doc),
	})
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return nil, fmt.Errorf("gemini blocked prompt: %s", resp.PromptFeedback.BlockReason)
	}

	text := resp.Text()
	if text == "" {
		return nil, errors.New("empty response from model")
	}
	if c.logger != nil {
		c.logger.Debug("gemini completion",
			slog.String("model", c.model),
			slog.Int("response_len", len(text)),
			slog.Duration("duration", time.Since(start)))
	}

	return validateOutput(contract, text)
}

// toGenAISchema переводит подмножество JSON Schema (type, properties,
// required, items, description) в genai.Schema.
func toGenAISchema(doc map[string]any) *genai.Schema {
	if doc == nil {
		return nil
	}

	schema := &genai.Schema{}
	if t, ok := doc["type"].(string); ok {
		schema.Type = genaiType(t)
	}
	if desc, ok := doc["description"].(string); ok {
		schema.Description = desc
	}
	if props, ok := doc["properties"].(map[string]any); ok {
		schema.Properties = make(map[string]*genai.Schema, len(props))
		for name, p := range props {
			if child, ok := p.(map[string]any); ok {
				schema.Properties[name] = toGenAISchema(child)
			}
		}
	}
	if required, ok := doc["required"].([]any); ok {
		for _, r := range required {
			if name, ok := r.(string); ok {
				schema.Required = append(schema.Required, name)
			}
		}
		// Порядок полей в ответе повторяет порядок required.
		schema.PropertyOrdering = append([]string(nil), schema.Required...)
	}
	if items, ok := doc["items"].(map[string]any); ok {
		schema.Items = toGenAISchema(items)
	}
	return schema
}

func genaiType(t string) genai.Type {
	switch t {
	case "object":
		return genai.TypeObject
	case "array":
		return genai.TypeArray
	case "string":
		return genai.TypeString
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	default:
		return genai.TypeUnspecified
	}
}
