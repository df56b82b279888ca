package llmcontracts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	assert.Equal(t, ContractInsightV1, DefaultContract())
	assert.Equal(t, []string{ContractInsightV1}, AvailableContracts())

	_, err := Lookup("STRICT_JSON_V3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"STRICT_JSON_V3"`)
	assert.Contains(t, err.Error(), ContractInsightV1)
}

func TestSystemPromptEmbedsSchema(t *testing.T) {
	prompt, err := SystemPrompt(ContractInsightV1)
	require.NoError(t, err)
	assert.Contains(t, prompt, `"anomalies"`)
	assert.Contains(t, prompt, `"summary"`)
	assert.NotContains(t, prompt, "%s")
}

func TestStrictDocumentClosesObjects(t *testing.T) {
	contract, err := Lookup(ContractInsightV1)
	require.NoError(t, err)

	doc, err := contract.StrictDocument()
	require.NoError(t, err)
	assert.Equal(t, false, doc["additionalProperties"])
	assert.ElementsMatch(t, []any{"summary", "anomalies"}, doc["required"])

	plain, err := contract.Document()
	require.NoError(t, err)
	_, has := plain["additionalProperties"]
	assert.False(t, has, "Document must not be mutated by StrictDocument")
}

func TestProperties(t *testing.T) {
	contract, err := Lookup(ContractInsightV1)
	require.NoError(t, err)
	assert.Equal(t, []string{"anomalies", "summary"}, contract.Properties())
}
