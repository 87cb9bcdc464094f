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

// openAIClient talks to the OpenAI chat completions API. It also serves any
// OpenAI-compatible endpoint via a custom base URL.
type openAIClient struct {
	model      string
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      retry.Policy
}

func newOpenAI(cfg Config) (*openAIClient, error) {
	if cfg.APIKey == "" {
		return nil, goerr.New("OpenAI API key is required",
			goerr.T(types.ErrTagValidation))
	}
	if cfg.Model == "" {
		return nil, goerr.New("OpenAI model name is required",
			goerr.T(types.ErrTagValidation))
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}

	return &openAIClient{
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: cfg.httpClient(),
		limiter:    newLimiter(),
		retry:      cfg.retryPolicy(),
	}, nil
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model     string          `json:"model"`
	Messages  []openAIMessage `json:"messages"`
	MaxTokens int             `json:"max_tokens,omitempty"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *openAIClient) Analyze(ctx context.Context, content, template string, style types.Style) (string, error) {
	system, user := buildAnalysisPrompt(content, template, style)
	return c.complete(ctx, system, user)
}

func (c *openAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, "", prompt)
}

func (c *openAIClient) complete(ctx context.Context, system, user string) (string, error) {
	messages := make([]openAIMessage, 0, 2)
	if system != "" {
		messages = append(messages, openAIMessage{Role: "system", Content: system})
	}
	messages = append(messages, openAIMessage{Role: "user", Content: user})

	req := openAIRequest{
		Model:     c.model,
		Messages:  messages,
		MaxTokens: defaultMaxTokens,
	}

	return retry.Do(ctx, c.retry, func(ctx context.Context) (string, error) {
		return c.doRequest(ctx, req)
	})
}

func (c *openAIClient) doRequest(ctx context.Context, req openAIRequest) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", goerr.Wrap(err, "failed to marshal request",
			goerr.T(types.ErrTagService))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", goerr.Wrap(err, "failed to create request",
			goerr.T(types.ErrTagService))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	status, body, err := sendRequest(c.httpClient, c.limiter, httpReq)
	if err != nil {
		return "", err
	}
	if err := checkStatus(status, body); err != nil {
		return "", err
	}

	var resp openAIResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", goerr.Wrap(err, "failed to parse response",
			goerr.T(types.ErrTagService))
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", errEmptyResponse(types.ProviderOpenAI)
	}
	return resp.Choices[0].Message.Content, nil
}
