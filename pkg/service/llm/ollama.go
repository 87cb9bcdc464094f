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

// ollamaClient talks to a local Ollama server. No API key is required.
type ollamaClient struct {
	model      string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      retry.Policy
}

func newOllama(cfg Config) (*ollamaClient, error) {
	if cfg.Model == "" {
		return nil, goerr.New("Ollama model name is required",
			goerr.T(types.ErrTagValidation))
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}

	return &ollamaClient{
		model:      cfg.Model,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: cfg.httpClient(),
		limiter:    newLimiter(),
		retry:      cfg.retryPolicy(),
	}, nil
}

type ollamaChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string              `json:"model"`
	Messages []ollamaChatMessage `json:"messages"`
	Stream   bool                `json:"stream"`
}

type ollamaChatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
}

func (c *ollamaClient) Analyze(ctx context.Context, content, template string, style types.Style) (string, error) {
	system, user := buildAnalysisPrompt(content, template, style)

	req := ollamaChatRequest{
		Model: c.model,
		Messages: []ollamaChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}

	return retry.Do(ctx, c.retry, func(ctx context.Context) (string, error) {
		body, err := c.doRequest(ctx, "/api/chat", req)
		if err != nil {
			return "", err
		}

		var resp ollamaChatResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", goerr.Wrap(err, "failed to parse response",
				goerr.T(types.ErrTagService))
		}
		if strings.TrimSpace(resp.Message.Content) == "" {
			return "", errEmptyResponse(types.ProviderOllama)
		}
		return resp.Message.Content, nil
	})
}

func (c *ollamaClient) Generate(ctx context.Context, prompt string) (string, error) {
	req := ollamaGenerateRequest{
		Model:  c.model,
		Prompt: prompt,
	}

	return retry.Do(ctx, c.retry, func(ctx context.Context) (string, error) {
		body, err := c.doRequest(ctx, "/api/generate", req)
		if err != nil {
			return "", err
		}

		var resp ollamaGenerateResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", goerr.Wrap(err, "failed to parse response",
				goerr.T(types.ErrTagService))
		}
		if strings.TrimSpace(resp.Response) == "" {
			return "", errEmptyResponse(types.ProviderOllama)
		}
		return resp.Response, nil
	})
}

func (c *ollamaClient) doRequest(ctx context.Context, path string, req any) ([]byte, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal request",
			goerr.T(types.ErrTagService))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create request",
			goerr.T(types.ErrTagService))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	status, body, err := sendRequest(c.httpClient, c.limiter, httpReq)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(status, body); err != nil {
		return nil, err
	}
	return body, nil
}
