package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/time/rate"

	"github.com/kagami-lab/kagami/pkg/domain/types"
	"github.com/kagami-lab/kagami/pkg/utils/retry"
)

// anthropicClient talks to the Anthropic messages API
type anthropicClient struct {
	model      string
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      retry.Policy
}

func newAnthropic(cfg Config) (*anthropicClient, error) {
	if cfg.APIKey == "" {
		return nil, goerr.New("Anthropic API key is required",
			goerr.T(types.ErrTagValidation))
	}
	if cfg.Model == "" {
		return nil, goerr.New("Anthropic model name is required",
			goerr.T(types.ErrTagValidation))
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultAnthropicBaseURL
	}

	return &anthropicClient{
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: cfg.httpClient(),
		limiter:    newLimiter(),
		retry:      cfg.retryPolicy(),
	}, nil
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (c *anthropicClient) Analyze(ctx context.Context, content, template string, style types.Style) (string, error) {
	system, user := buildAnalysisPrompt(content, template, style)
	return c.complete(ctx, system, user)
}

func (c *anthropicClient) Generate(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, "", prompt)
}

func (c *anthropicClient) complete(ctx context.Context, system, user string) (string, error) {
	req := anthropicRequest{
		Model:     c.model,
		MaxTokens: defaultMaxTokens,
		System:    system,
		Messages: []anthropicMessage{
			{Role: "user", Content: user},
		},
	}

	return retry.Do(ctx, c.retry, func(ctx context.Context) (string, error) {
		return c.doRequest(ctx, req)
	})
}

func (c *anthropicClient) doRequest(ctx context.Context, req anthropicRequest) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", goerr.Wrap(err, "failed to marshal request",
			goerr.T(types.ErrTagService))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return "", goerr.Wrap(err, "failed to create request",
			goerr.T(types.ErrTagService))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-API-Key", c.apiKey)
	httpReq.Header.Set("Anthropic-Version", anthropicVersion)

	status, body, err := sendRequest(c.httpClient, c.limiter, httpReq)
	if err != nil {
		return "", err
	}
	if err := checkStatus(status, body); err != nil {
		return "", err
	}

	var resp anthropicResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", goerr.Wrap(err, "failed to parse response",
			goerr.T(types.ErrTagService))
	}
	if len(resp.Content) == 0 || strings.TrimSpace(resp.Content[0].Text) == "" {
		return "", errEmptyResponse(types.ProviderAnthropic)
	}
	return resp.Content[0].Text, nil
}
