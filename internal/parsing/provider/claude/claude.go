package claude

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
	apiURL     = "https://api.anthropic.com/v1/messages"
	apiVersion = "2023-06-01"

	defaultModel = "claude-sonnet-4-20250514"
)

// Provider implements port.InvoiceProvider using the Anthropic Messages API.
// The scorer backstops responses that omit the confidence_scores block.
type Provider struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
	scorer   parsing.Scorer
}

// New creates a Claude-based invoice provider from per-user provider settings.
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
		"model":      p.model,
		"max_tokens": 8192,
		"messages": []map[string]interface{}{
			{
				"role": "user",
				"content": []map[string]interface{}{
					{"type": "text", "text": prompt},
				},
			},
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
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling anthropic API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("anthropic API error (status %d): %s", resp.StatusCode, string(respBody))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := parsing.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, parsing.NewRateLimitError(domain.ProviderClaude, baseErr, retryAfter)
		}
		return nil, baseErr
	}

	return p.parseResponse(respBody, in.Text)
}

// apiResponse models the Anthropic Messages API response.
type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func (p *Provider) parseResponse(body []byte, sourceText string) (*port.AttemptResult, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Content) == 0 {
		return nil, fmt.Errorf("empty response from API")
	}

	if resp.StopReason == "max_tokens" {
		return nil, fmt.Errorf("output truncated (stop_reason: max_tokens): response exceeded output token limit")
	}

	text := resp.Content[0].Text

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
		ProviderID: domain.ProviderClaude,
		Success:    true,
		Confidence: confidence,
		Fields:     parsed.Data,
		Cost:       parsing.CostForTokens(p.model, resp.Usage.InputTokens, resp.Usage.OutputTokens),
	}, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
