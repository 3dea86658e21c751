package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"siteledger/internal/domain"
	"siteledger/internal/parsing"
	"siteledger/internal/port"
)

const (
	apiURL = "https://api.openai.com/v1/chat/completions"

	defaultModel = "gpt-4o"
)

// Provider implements port.InvoiceProvider using the OpenAI Chat Completions API.
// The scorer backstops responses that omit the confidence_scores block.
type Provider struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
	scorer   parsing.Scorer
}

// New creates an OpenAI-based invoice provider from per-user provider settings.
func New(cfg domain.ProviderSettings, timeout time.Duration, scorer parsing.Scorer) *Provider {
	return newProvider(cfg, timeout, apiURL, scorer)
}

// NewWithEndpoint creates a provider pointing at a custom API endpoint (for testing).
func NewWithEndpoint(cfg domain.ProviderSettings, timeout time.Duration, endpoint string, scorer parsing.Scorer) *Provider {
	return newProvider(cfg, timeout, endpoint, scorer)
}

func newProvider(cfg domain.ProviderSettings, timeout time.Duration, endpoint string, scorer parsing.Scorer) *Provider {
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Provider{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		scorer:   scorer,
	}
}

// EstimateCost predicts the call cost from the input size and model pricing.
func (p *Provider) EstimateCost(in port.ParseInput) float64 {
	return parsing.EstimateCallCost(p.model, in.Text)
}

func (p *Provider) Parse(ctx context.Context, in port.ParseInput) (*port.AttemptResult, error) {
	prompt := parsing.BuildInvoicePrompt(in)

	reqBody := map[string]interface{}{
		"model":                 p.model,
		"max_completion_tokens": 8192,
		"messages": []map[string]interface{}{
			{"role": "user", "content": prompt},
		},
		"response_format": map[string]interface{}{
			"type": "json_object",
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling openai API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("openai API error (status %d): %s", resp.StatusCode, string(respBody))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := parsing.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, parsing.NewRateLimitError(domain.ProviderOpenAI, baseErr, retryAfter)
		}
		return nil, baseErr
	}

	return p.parseResponse(respBody, in.Text)
}

// apiResponse models the OpenAI Chat Completions API response.
type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func (p *Provider) parseResponse(body []byte, sourceText string) (*port.AttemptResult, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from API: no choices")
	}

	if resp.Choices[0].FinishReason == "length" {
		return nil, fmt.Errorf("output truncated (finish_reason: length): response exceeded output token limit")
	}

	text := resp.Choices[0].Message.Content

	var parsed struct {
		Data             *domain.InvoiceFields `json:"data"`
		ConfidenceScores json.RawMessage       `json:"confidence_scores"`
	}
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("parsing LLM JSON output: %w (raw: %s)", err, truncate(text, 500))
	}
	if parsed.Data == nil {
		return nil, fmt.Errorf("LLM output missing data object (raw: %s)", truncate(text, 500))
	}

	// Some responses omit confidence_scores entirely; estimate instead of
	// sinking a valid extraction to zero confidence.
	confidence := parsing.MeanConfidence(parsed.ConfidenceScores)
	if confidence == 0 && p.scorer != nil {
		confidence = p.scorer.Score(parsed.Data, sourceText)
	}

	return &port.AttemptResult{
		ProviderID: domain.ProviderOpenAI,
		Success:    true,
		Confidence: confidence,
		Fields:     parsed.Data,
		Cost:       parsing.CostForTokens(p.model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens),
	}, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
