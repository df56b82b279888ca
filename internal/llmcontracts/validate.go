package llmcontracts

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/kaptinlin/jsonrepair"
	"github.com/kaptinlin/jsonschema"
)

// ValidationResult carries validation details.
type ValidationResult struct {
	IsValid       bool
	Repaired      bool
	Errors        []string
	CanonicalJSON string
}

var (
	compiledMu sync.Mutex
	compiled   = map[string]*jsonschema.Schema{}
)

// Validate checks LLM response text against a registered contract.
// The returned error is reserved for programmer mistakes (unknown contract, broken schema);
// a non-conforming response is reported through ValidationResult.Errors.
func Validate(contractName string, llmText string) (ValidationResult, error) {
	result := ValidationResult{}

	contract, err := Lookup(contractName)
	if err != nil {
		return result, err
	}
	schema, err := compiledSchema(contract)
	if err != nil {
		return result, err
	}

	raw := trimCodeFence(strings.TrimSpace(llmText))
	if raw == "" {
		result.Errors = append(result.Errors, "empty model response")
		return result, nil
	}

	value, repaired, err := decodeLenient(raw)
	result.Repaired = repaired
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("invalid JSON: %v", err))
		return result, nil
	}

	obj, ok := value.(map[string]any)
	if !ok {
		result.Errors = append(result.Errors, "top-level value must be a JSON object")
		return result, nil
	}

	eval := schema.Validate(obj)
	if !eval.IsValid() {
		for field, evalErr := range eval.Errors {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", field, evalErr.Message))
		}
		if len(result.Errors) == 0 {
			result.Errors = append(result.Errors, "response does not match schema")
		}
		sort.Strings(result.Errors)
		return result, nil
	}

	canonical, err := json.Marshal(restrict(obj, contract.Properties()))
	if err != nil {
		return result, fmt.Errorf("marshal canonical JSON: %w", err)
	}
	result.IsValid = true
	result.CanonicalJSON = string(canonical)
	return result, nil
}

func compiledSchema(contract Contract) (*jsonschema.Schema, error) {
	compiledMu.Lock()
	defer compiledMu.Unlock()

	if schema, ok := compiled[contract.Name]; ok {
		return schema, nil
	}
	schema, err := jsonschema.NewCompiler().Compile([]byte(contract.Schema))
	if err != nil {
		return nil, fmt.Errorf("compile %s schema: %w", contract.Name, err)
	}
	compiled[contract.Name] = schema
	return schema, nil
}

// decodeLenient parses raw strictly first and falls back to jsonrepair,
// so well-formed output is never rewritten.
func decodeLenient(raw string) (any, bool, error) {
	var value any
	strictErr := json.Unmarshal([]byte(raw), &value)
	if strictErr == nil {
		return value, false, nil
	}

	repaired, err := jsonrepair.JSONRepair(raw)
	if err != nil {
		return nil, false, strictErr
	}
	value = nil
	if err := json.Unmarshal([]byte(repaired), &value); err != nil {
		return nil, true, strictErr
	}
	return value, true, nil
}

func trimCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[idx+1:]
	} else {
		s = ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// restrict drops keys the schema does not declare.
func restrict(obj map[string]any, properties []string) map[string]any {
	if len(properties) == 0 {
		return obj
	}
	out := make(map[string]any, len(properties))
	for _, name := range properties {
		if v, ok := obj[name]; ok {
			out[name] = v
		}
	}
	return out
}
