package claude_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"siteledger/internal/domain"
	"siteledger/internal/parsing"
	"siteledger/internal/parsing/provider/claude"
	"siteledger/internal/port"
)

func newTestProvider(serverURL string) *claude.Provider {
	cfg := domain.ProviderSettings{APIKey: "test-api-key", Model: "claude-sonnet-4-20250514", Enabled: true}
	return claude.NewWithEndpoint(cfg, 30*time.Second, serverURL, parsing.DefaultScorer())
}

func testInput() port.ParseInput {
	return port.ParseInput{Text: "ACME Concrete\nInvoice #: INV-001\nTotal: $500.00", PageCount: 1}
}

func TestClaudeProvider_Parse_Success(t *testing.T) {
	responseBody := map[string]interface{}{
		"content": []map[string]interface{}{
			{
				"type": "text",
				"text": `{"data":{"invoice_number":"INV-001","totals":{"total":500}},"confidence_scores":{"invoice_number":0.95,"totals":{"total":0.85}}}`,
			},
		},
		"stop_reason": "end_turn",
		"usage":       map[string]interface{}{"input_tokens": 1000, "output_tokens": 500},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-api-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var reqBody map[string]interface{}
		err := json.NewDecoder(r.Body).Decode(&reqBody)
		assert.NoError(t, err)
		assert.Equal(t, "claude-sonnet-4-20250514", reqBody["model"])
		assert.Equal(t, float64(8192), reqBody["max_tokens"])

		messages := reqBody["messages"].([]interface{})
		assert.Len(t, messages, 1)
		msg := messages[0].(map[string]interface{})
		assert.Equal(t, "user", msg["role"])

		content := msg["content"].([]interface{})
		assert.Len(t, content, 1)
		textBlock := content[0].(map[string]interface{})
		assert.Equal(t, "text", textBlock["type"])
		assert.Contains(t, textBlock["text"], "INV-001")

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(responseBody)
	}))
	defer server.Close()

	p := newTestProvider(server.URL)

	result, err := p.Parse(context.Background(), testInput())

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, domain.ProviderClaude, result.ProviderID)
	assert.True(t, result.Success)
	assert.Equal(t, "INV-001", result.Fields.InvoiceNumber)
	assert.InDelta(t, 0.90, result.Confidence, 1e-9)
	// 1000 in @ 0.003/1K + 500 out @ 0.015/1K
	assert.InDelta(t, 0.0105, result.Cost, 1e-9)
}

func TestClaudeProvider_Parse_NoConfidenceScores_FallsBackToScorer(t *testing.T) {
	// A valid extraction without a confidence_scores block must still carry a
	// usable confidence, estimated from the extraction itself.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": `{"data":{"invoice_number":"INV-002","line_items":[{"description":"Concrete pour foundation","quantity":10,"unit_price":50,"total":500}],"totals":{"total":500}}}`,
				},
			},
			"stop_reason": "end_turn",
			"usage":       map[string]interface{}{"input_tokens": 1000, "output_tokens": 500},
		})
	}))
	defer server.Close()

	p := newTestProvider(server.URL)

	in := port.ParseInput{
		Text:      "ACME Concrete\nInvoice #: INV-002\nConcrete pour foundation  10  CY  50.00  500.00\nTotal: $500.00",
		PageCount: 1,
	}
	result, err := p.Parse(context.Background(), in)

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.Success)
	assert.Greater(t, result.Confidence, 0.0)
	// A fully consistent extraction scores at the cap.
	assert.InDelta(t, 0.95, result.Confidence, 1e-9)
}

func TestClaudeProvider_Parse_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	p := newTestProvider(server.URL)

	result, err := p.Parse(context.Background(), testInput())

	assert.Nil(t, result)
	require.Error(t, err)
	var rlErr *parsing.RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, domain.ProviderClaude, rlErr.Provider)
	assert.Equal(t, 30*time.Second, rlErr.RetryAfter)
}

func TestClaudeProvider_Parse_Truncated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content":     []map[string]interface{}{{"type": "text", "text": `{"data":`}},
			"stop_reason": "max_tokens",
		})
	}))
	defer server.Close()

	p := newTestProvider(server.URL)

	result, err := p.Parse(context.Background(), testInput())

	assert.Nil(t, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_tokens")
}

func TestClaudeProvider_Parse_MalformedLLMOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content":     []map[string]interface{}{{"type": "text", "text": "sorry, I cannot help with that"}},
			"stop_reason": "end_turn",
		})
	}))
	defer server.Close()

	p := newTestProvider(server.URL)

	result, err := p.Parse(context.Background(), testInput())

	assert.Nil(t, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing LLM JSON output")
}

func TestClaudeProvider_EstimateCost(t *testing.T) {
	p := newTestProvider("http://unused")

	cost := p.EstimateCost(testInput())

	assert.Greater(t, cost, 0.0)
}
