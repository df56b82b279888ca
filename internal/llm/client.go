package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"aiinsight/internal/llmcontracts"
)

var (
	ErrInvalidModel    = errors.New("model is required")
	ErrEmptyPrompt     = errors.New("prompt is required")
	ErrMissingAPIKey   = errors.New("api key is required")
	ErrUnknownProvider = errors.New("unknown provider")
)

// Generator минимальный интерфейс генерации структурированного ответа.
// Возвращает объект, уже проверенный по контракту, в каноничном JSON.
type Generator interface {
	Generate(ctx context.Context, prompt string, contract llmcontracts.Contract) (json.RawMessage, error)
}

// StatusError описывает не-2xx ответ провайдера.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// ContractError означает, что ответ модели не удалось привести к контракту.
type ContractError struct {
	Contract string
	Errors   []string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("response violates contract %s: %s", e.Contract, strings.Join(e.Errors, "; "))
}

// validateOutput прогоняет текст модели через контракт.
func validateOutput(contract llmcontracts.Contract, text string) (json.RawMessage, error) {
	res, err := llmcontracts.Validate(contract.Name, text)
	if err != nil {
		return nil, fmt.Errorf("validate response: %w", err)
	}
	if !res.IsValid {
		return nil, &ContractError{Contract: contract.Name, Errors: res.Errors}
	}
	return json.RawMessage(res.CanonicalJSON), nil
}

func checkPrompt(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return ErrEmptyPrompt
	}
	return nil
}

const snippetLimit = 200

func bodySnippet(body []byte) string {
	if len(body) <= snippetLimit {
		return string(body)
	}
	return string(body[:snippetLimit])
}
