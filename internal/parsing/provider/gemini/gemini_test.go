package gemini_test

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
	"siteledger/internal/parsing/provider/gemini"
	"siteledger/internal/port"
)

func newTestProvider(serverURL string) *gemini.Provider {
	cfg := domain.ProviderSettings{APIKey: "test-api-key", Model: "gemini-2.0-flash", Enabled: true}
	return gemini.NewWithEndpoint(cfg, 30*time.Second, serverURL, parsing.DefaultScorer())
}

func testInput() port.ParseInput {
	return port.ParseInput{Text: "ACME Concrete\nInvoice #: INV-003", PageCount: 1}
}

func TestGeminiProvider_Parse_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-api-key", r.Header.Get("x-goog-api-key"))

		var reqBody map[string]interface{}
		err := json.NewDecoder(r.Body).Decode(&reqBody)
		assert.NoError(t, err)
		genCfg := reqBody["generationConfig"].(map[string]interface{})
		assert.Equal(t, "application/json", genCfg["responseMimeType"])

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{
					"content": map[string]interface{}{
						"parts": []map[string]interface{}{
							{"text": `{"data":{"invoice_number":"INV-003"},"confidence_scores":{"invoice_number":0.7}}`},
						},
					},
					"finishReason": "STOP",
				},
			},
			"usageMetadata": map[string]interface{}{"promptTokenCount": 1000, "candidatesTokenCount": 500},
		})
	}))
	defer server.Close()

	p := newTestProvider(server.URL)

	result, err := p.Parse(context.Background(), testInput())

	require.NoError(t, err)
	assert.Equal(t, domain.ProviderGemini, result.ProviderID)
	assert.Equal(t, "INV-003", result.Fields.InvoiceNumber)
	assert.InDelta(t, 0.7, result.Confidence, 1e-9)
	assert.InDelta(t, 0.0003, result.Cost, 1e-9)
}

func TestGeminiProvider_Parse_NoConfidenceScores_FallsBackToScorer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{
					"content": map[string]interface{}{
						"parts": []map[string]interface{}{
							{"text": `{"data":{"invoice_number":"INV-003","line_items":[{"description":"Concrete pour foundation","quantity":10,"unit_price":50,"total":500}],"totals":{"total":500}}}`},
						},
					},
					"finishReason": "STOP",
				},
			},
			"usageMetadata": map[string]interface{}{"promptTokenCount": 1000, "candidatesTokenCount": 500},
		})
	}))
	defer server.Close()

	p := newTestProvider(server.URL)

	in := port.ParseInput{
		Text:      "ACME Concrete\nInvoice #: INV-003\nConcrete pour foundation  10  CY  50.00  500.00\nTotal: $500.00",
		PageCount: 1,
	}
	result, err := p.Parse(context.Background(), in)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.InDelta(t, 0.95, result.Confidence, 1e-9)
}

func TestGeminiProvider_Parse_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "15")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	p := newTestProvider(server.URL)

	_, err := p.Parse(context.Background(), testInput())

	var rlErr *parsing.RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, domain.ProviderGemini, rlErr.Provider)
	assert.Equal(t, 15*time.Second, rlErr.RetryAfter)
}

func TestGeminiProvider_Parse_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"candidates": []interface{}{}})
	}))
	defer server.Close()

	p := newTestProvider(server.URL)

	_, err := p.Parse(context.Background(), testInput())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidates")
}

func TestGeminiProvider_Parse_Truncated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{
					"content": map[string]interface{}{
						"parts": []map[string]interface{}{{"text": `{"data":`}},
					},
					"finishReason": "MAX_TOKENS",
				},
			},
		})
	}))
	defer server.Close()

	p := newTestProvider(server.URL)

	_, err := p.Parse(context.Background(), testInput())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAX_TOKENS")
}
