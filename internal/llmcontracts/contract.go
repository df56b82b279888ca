package llmcontracts

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

const (
	ContractInsightV1 = "INSIGHT_V1"
)

// Contract is a named JSON Schema that a model response must satisfy.
type Contract struct {
	Name        string
	Description string
	Schema      string
}

var contractsRegistry = map[string]Contract{
	ContractInsightV1: {
		Name:        ContractInsightV1,
		Description: "Short summary of the input with a list of detected anomalies",
		Schema:      contractJSONSchemaInsightV1,
	},
}

// DefaultContract returns the default contract name.
func DefaultContract() string {
	return ContractInsightV1
}

// Lookup returns a registered contract by name.
func Lookup(name string) (Contract, error) {
	contract, ok := contractsRegistry[name]
	if !ok {
		return Contract{}, fmt.Errorf("unknown contract %q, available: %s", name, strings.Join(AvailableContracts(), ", "))
	}
	return contract, nil
}

// SystemPrompt returns a system prompt for the contract.
func SystemPrompt(name string) (string, error) {
	contract, err := Lookup(name)
	if err != nil {
		return "", err
	}
	return buildSystemPrompt(contract.Schema), nil
}

// AvailableContracts returns a sorted list of supported contract names.
func AvailableContracts() []string {
	names := make([]string, 0, len(contractsRegistry))
	for name := range contractsRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Document decodes the contract schema into a fresh map the caller may modify.
func (c Contract) Document() (map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal([]byte(c.Schema), &doc); err != nil {
		return nil, fmt.Errorf("decode %s schema: %w", c.Name, err)
	}
	return doc, nil
}

// StrictDocument is Document with additionalProperties=false on every object node,
// as required by OpenAI structured outputs in strict mode.
func (c Contract) StrictDocument() (map[string]any, error) {
	doc, err := c.Document()
	if err != nil {
		return nil, err
	}
	closeObjects(doc)
	return doc, nil
}

// Properties returns the top-level property names declared by the schema.
func (c Contract) Properties() []string {
	doc, err := c.Document()
	if err != nil {
		return nil
	}
	props, _ := doc["properties"].(map[string]any)
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func closeObjects(node map[string]any) {
	if node["type"] == "object" {
		node["additionalProperties"] = false
	}
	if props, ok := node["properties"].(map[string]any); ok {
		for _, p := range props {
			if child, ok := p.(map[string]any); ok {
				closeObjects(child)
			}
		}
	}
	if items, ok := node["items"].(map[string]any); ok {
		closeObjects(items)
	}
}

// buildSystemPrompt composes the common template with the contract JSON schema.
func buildSystemPrompt(schema string) string {
	return fmt.Sprintf(systemPromptTemplate, schema)
}

const contractJSONSchemaInsightV1 = `{
  "type": "object",
  "properties": {
    "summary": {
      "type": "string",
      "description": "Free-text summary of the analysed input"
    },
    "anomalies": {
      "type": "array",
      "description": "Detected anomalies, one short sentence each, most important first",
      "items": {
        "type": "string"
      }
    }
  },
  "required": ["summary", "anomalies"]
}`

const systemPromptTemplate = `You are an API-only, machine-facing analysis assistant.

You MUST output exactly ONE valid JSON object and NOTHING else.
NO markdown. NO code fences. NO explanations.

The JSON object MUST conform to this JSON Schema:

%s

Rules:
1) Both "summary" and "anomalies" MUST be present.
2) "anomalies" MUST be an array of strings. Use an empty array when nothing is anomalous.
3) Do not add fields that the schema does not declare.
4) Use double quotes and escape all strings properly.`
