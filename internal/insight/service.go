package insight

import (
	"context"
	"encoding/json"
	"fmt"

	"aiinsight/internal/llm"
	"aiinsight/internal/llmcontracts"
)

// Request тело POST /insight. Остальные поля игнорируются.
type Request struct {
	Prompt string `json:"prompt"`
}

// Result ответ модели, приведённый к контракту.
type Result struct {
	Summary   string   `json:"summary"`
	Anomalies []string `json:"anomalies"`
}

// Service получает от генератора сводку и список аномалий по промпту.
type Service struct {
	generator llm.Generator
	contract  llmcontracts.Contract
}

func NewService(generator llm.Generator) (*Service, error) {
	contract, err := llmcontracts.Lookup(llmcontracts.DefaultContract())
	if err != nil {
		return nil, err
	}
	return &Service{
		generator: generator,
		contract:  contract,
	}, nil
}

// Generate делает ровно один вызов генератора и перекладывает
// проверенный объект в Result, отбрасывая всё лишнее.
func (s *Service) Generate(ctx context.Context, prompt string) (Result, error) {
	raw, err := s.generator.Generate(ctx, prompt, s.contract)
	if err != nil {
		return Result{}, err
	}

	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return Result{}, fmt.Errorf("decode insight: %w", err)
	}
	if result.Anomalies == nil {
		result.Anomalies = []string{}
	}
	return result, nil
}
