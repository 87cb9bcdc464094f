// Package llm provides AI backend clients over provider HTTP APIs. Each
// client owns its provider's wire format and auth scheme and applies a shared
// retry policy with exponential backoff.
package llm

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/time/rate"

	"github.com/kagami-lab/kagami/pkg/domain/interfaces"
	"github.com/kagami-lab/kagami/pkg/domain/types"
	"github.com/kagami-lab/kagami/pkg/utils/retry"
	"github.com/kagami-lab/kagami/pkg/utils/safe"
)

const (
	defaultOpenAIBaseURL    = "https://api.openai.com"
	defaultAnthropicBaseURL = "https://api.anthropic.com"
	defaultOllamaBaseURL    = "http://localhost:11434"

	anthropicVersion = "2023-06-01"

	defaultTimeout   = 60 * time.Second
	defaultMaxTokens = 4096
)

// Provider APIs meter per minute. 50 requests/min with a small burst keeps
// well under every provider's free-tier quota.
const (
	requestsPerMinute = 50
	requestBurst      = 5
)

// Config holds construction-time settings for an AI backend client
type Config struct {
	Provider types.Provider
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration

	// HTTPClient overrides the default HTTP client. Used by tests.
	HTTPClient *http.Client

	// Retry overrides the default retry policy. Used by tests.
	Retry *retry.Policy
}

func (c Config) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

func (c Config) retryPolicy() retry.Policy {
	if c.Retry != nil {
		return *c.Retry
	}
	return retry.DefaultPolicy()
}

func newLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), requestBurst)
}

// New constructs the client for the configured provider. Missing API keys or
// model names are rejected here, not deferred to call time.
func New(cfg Config) (interfaces.Client, error) {
	switch cfg.Provider {
	case types.ProviderOpenAI:
		return newOpenAI(cfg)
	case types.ProviderAnthropic:
		return newAnthropic(cfg)
	case types.ProviderOllama:
		return newOllama(cfg)
	default:
		return nil, goerr.New("unknown AI provider",
			goerr.T(types.ErrTagValidation),
			goerr.V("provider", cfg.Provider))
	}
}

// buildAnalysisPrompt composes the system and user messages for an analyze
// call. The style selects the tone instruction embedded in the system prompt.
func buildAnalysisPrompt(content, template string, style types.Style) (system, user string) {
	tone := "supportive and gentle"
	if style == types.StyleDirect {
		tone = "direct and honest"
	}
	system = fmt.Sprintf(
		"You are a thoughtful writing analyst. Provide %s feedback on the user's text, following the given instructions.",
		tone,
	)
	user = fmt.Sprintf("%s\n\n---\n\n%s", template, content)
	return system, user
}

// sendRequest performs one HTTP exchange after waiting on the rate limiter.
// Transport failures are tagged retryable; the status code is classified by
// the caller via checkStatus.
func sendRequest(hc *http.Client, limiter *rate.Limiter, req *http.Request) (int, []byte, error) {
	if err := limiter.Wait(req.Context()); err != nil {
		return 0, nil, goerr.Wrap(err, "rate limiter wait failed")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return 0, nil, goerr.Wrap(err, "request to AI backend failed",
			goerr.T(types.ErrTagService), goerr.T(types.ErrTagRetryable))
	}
	defer safe.Close(req.Context(), resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, goerr.Wrap(err, "failed to read AI backend response",
			goerr.T(types.ErrTagService), goerr.T(types.ErrTagRetryable))
	}
	return resp.StatusCode, body, nil
}

// checkStatus maps a non-2xx status code to a service error. Rate limiting
// and server-side failures are retryable; auth failures and all other client
// errors are terminal.
func checkStatus(status int, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}

	switch {
	case status == http.StatusUnauthorized:
		return goerr.New("authentication failed",
			goerr.T(types.ErrTagService),
			goerr.V("status", status),
			goerr.V("body", string(body)))
	case status == http.StatusTooManyRequests:
		return goerr.New("rate limited by AI backend",
			goerr.T(types.ErrTagService), goerr.T(types.ErrTagRetryable),
			goerr.V("status", status),
			goerr.V("body", string(body)))
	case status >= 500:
		return goerr.New("AI backend server error",
			goerr.T(types.ErrTagService), goerr.T(types.ErrTagRetryable),
			goerr.V("status", status),
			goerr.V("body", string(body)))
	default:
		return goerr.New("unexpected status from AI backend",
			goerr.T(types.ErrTagService),
			goerr.V("status", status),
			goerr.V("body", string(body)))
	}
}

// errEmptyResponse reports a 2xx response whose expected content field was
// absent or empty. A well-formed but contentless reply points at an
// integration problem, so it is never retried.
func errEmptyResponse(provider types.Provider) error {
	return goerr.New("no content in response",
		goerr.T(types.ErrTagService),
		goerr.V("provider", provider))
}
