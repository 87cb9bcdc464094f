package llm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/kagami-lab/kagami/pkg/domain/types"
	"github.com/kagami-lab/kagami/pkg/service/llm"
	"github.com/kagami-lab/kagami/pkg/utils/retry"
)

func fastRetry() *retry.Policy {
	return &retry.Policy{
		MaxAttempts:   3,
		InitialDelay:  time.Millisecond,
		BackoffFactor: 2.0,
		Sleep: func(ctx context.Context, d time.Duration) error {
			return nil
		},
	}
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := llm.New(llm.Config{Provider: types.Provider("bard")})
	gt.Error(t, err)
	gt.Bool(t, types.IsValidation(err)).True()
}

func TestNewOpenAIRequiresAPIKey(t *testing.T) {
	_, err := llm.New(llm.Config{Provider: types.ProviderOpenAI})
	gt.Error(t, err)
	gt.Bool(t, types.IsValidation(err)).True()
}

func TestNewAnthropicRequiresAPIKeyAndModel(t *testing.T) {
	_, err := llm.New(llm.Config{Provider: types.ProviderAnthropic})
	gt.Error(t, err)
	gt.Bool(t, types.IsValidation(err)).True()

	_, err = llm.New(llm.Config{Provider: types.ProviderAnthropic, APIKey: "sk-test"})
	gt.Error(t, err)
	gt.Bool(t, types.IsValidation(err)).True()
}

func TestNewRequiresModel(t *testing.T) {
	for _, cfg := range []llm.Config{
		{Provider: types.ProviderOpenAI, APIKey: "sk-test"},
		{Provider: types.ProviderOllama},
	} {
		_, err := llm.New(cfg)
		gt.Error(t, err)
		gt.Bool(t, types.IsValidation(err)).True()
	}
}

func TestNewOllamaNeedsNoAPIKey(t *testing.T) {
	client, err := llm.New(llm.Config{Provider: types.ProviderOllama, Model: "llama3.1"})
	gt.NoError(t, err).Required()
	gt.Value(t, client).NotNil()
}

func TestOpenAIAnalyze(t *testing.T) {
	var calls int32
	var gotAuth string
	var gotModel string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		gotAuth = r.Header.Get("Authorization")

		var req map[string]any
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotModel, _ = req["model"].(string)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"analysis result"}}]}`))
	}))
	defer srv.Close()

	client, err := llm.New(llm.Config{
		Provider: types.ProviderOpenAI,
		APIKey:   "sk-test",
		Model:    "gpt-4o-mini",
		BaseURL:  srv.URL,
		Retry:    fastRetry(),
	})
	gt.NoError(t, err).Required()

	got, err := client.Analyze(context.Background(), "my journal entry", "summarize this", types.StyleDirect)
	gt.NoError(t, err).Required()
	gt.Value(t, got).Equal("analysis result")
	gt.Value(t, atomic.LoadInt32(&calls)).Equal(int32(1))
	gt.Value(t, gotAuth).Equal("Bearer sk-test")
	gt.Value(t, gotModel).Equal("gpt-4o-mini")
}

func TestOpenAIUnauthorizedIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client, err := llm.New(llm.Config{
		Provider: types.ProviderOpenAI,
		APIKey:   "sk-bad",
		Model:    "gpt-4o-mini",
		BaseURL:  srv.URL,
		Retry:    fastRetry(),
	})
	gt.NoError(t, err).Required()

	_, err = client.Analyze(context.Background(), "content", "template", types.StyleGentle)
	gt.Error(t, err)
	gt.Bool(t, types.IsService(err)).True()
	gt.Bool(t, types.IsRetryable(err)).False()
	gt.Value(t, atomic.LoadInt32(&calls)).Equal(int32(1))
}

func TestOpenAIRateLimitRecovers(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"eventually"}}]}`))
	}))
	defer srv.Close()

	client, err := llm.New(llm.Config{
		Provider: types.ProviderOpenAI,
		APIKey:   "sk-test",
		Model:    "gpt-4o-mini",
		BaseURL:  srv.URL,
		Retry:    fastRetry(),
	})
	gt.NoError(t, err).Required()

	got, err := client.Analyze(context.Background(), "content", "template", types.StyleGentle)
	gt.NoError(t, err).Required()
	gt.Value(t, got).Equal("eventually")
	gt.Value(t, atomic.LoadInt32(&calls)).Equal(int32(3))
}

func TestOpenAIServerErrorExhaustsAttempts(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := llm.New(llm.Config{
		Provider: types.ProviderOpenAI,
		APIKey:   "sk-test",
		Model:    "gpt-4o-mini",
		BaseURL:  srv.URL,
		Retry:    fastRetry(),
	})
	gt.NoError(t, err).Required()

	_, err = client.Analyze(context.Background(), "content", "template", types.StyleGentle)
	gt.Error(t, err)
	gt.Bool(t, types.IsService(err)).True()
	gt.Value(t, atomic.LoadInt32(&calls)).Equal(int32(3))
}

func TestOpenAIEmptyContentIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	client, err := llm.New(llm.Config{
		Provider: types.ProviderOpenAI,
		APIKey:   "sk-test",
		Model:    "gpt-4o-mini",
		BaseURL:  srv.URL,
		Retry:    fastRetry(),
	})
	gt.NoError(t, err).Required()

	_, err = client.Analyze(context.Background(), "content", "template", types.StyleGentle)
	gt.Error(t, err)
	gt.String(t, err.Error()).Contains("no content in response")
	gt.Bool(t, types.IsRetryable(err)).False()
	gt.Value(t, atomic.LoadInt32(&calls)).Equal(int32(1))
}

func TestAnthropicAnalyze(t *testing.T) {
	var gotAPIKey, gotVersion, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAPIKey = r.Header.Get("X-API-Key")
		gotVersion = r.Header.Get("Anthropic-Version")
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"claude says"}]}`))
	}))
	defer srv.Close()

	client, err := llm.New(llm.Config{
		Provider: types.ProviderAnthropic,
		APIKey:   "sk-ant",
		Model:    "claude-sonnet-4-20250514",
		BaseURL:  srv.URL,
		Retry:    fastRetry(),
	})
	gt.NoError(t, err).Required()

	got, err := client.Analyze(context.Background(), "content", "template", types.StyleGentle)
	gt.NoError(t, err).Required()
	gt.Value(t, got).Equal("claude says")
	gt.Value(t, gotAPIKey).Equal("sk-ant")
	gt.Value(t, gotVersion).Equal("2023-06-01")
	gt.Value(t, gotPath).Equal("/v1/messages")
}

func TestAnthropicGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		// Free-form generation carries no system prompt
		_, hasSystem := req["system"]
		gt.Bool(t, hasSystem).False()
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"generated"}]}`))
	}))
	defer srv.Close()

	client, err := llm.New(llm.Config{
		Provider: types.ProviderAnthropic,
		APIKey:   "sk-ant",
		Model:    "claude-sonnet-4-20250514",
		BaseURL:  srv.URL,
		Retry:    fastRetry(),
	})
	gt.NoError(t, err).Required()

	got, err := client.Generate(context.Background(), "write a haiku")
	gt.NoError(t, err).Required()
	gt.Value(t, got).Equal("generated")
}

func TestOllamaAnalyze(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path

		var req map[string]any
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gt.Value(t, req["stream"]).Equal(false)

		_, _ = w.Write([]byte(`{"message":{"content":"local analysis"}}`))
	}))
	defer srv.Close()

	client, err := llm.New(llm.Config{
		Provider: types.ProviderOllama,
		Model:    "llama3.1",
		BaseURL:  srv.URL,
		Retry:    fastRetry(),
	})
	gt.NoError(t, err).Required()

	got, err := client.Analyze(context.Background(), "content", "template", types.StyleDirect)
	gt.NoError(t, err).Required()
	gt.Value(t, got).Equal("local analysis")
	gt.Value(t, gotPath).Equal("/api/chat")
}

func TestOllamaGenerate(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"response":"local generation"}`))
	}))
	defer srv.Close()

	client, err := llm.New(llm.Config{
		Provider: types.ProviderOllama,
		Model:    "llama3.1",
		BaseURL:  srv.URL,
		Retry:    fastRetry(),
	})
	gt.NoError(t, err).Required()

	got, err := client.Generate(context.Background(), "write a haiku")
	gt.NoError(t, err).Required()
	gt.Value(t, got).Equal("local generation")
	gt.Value(t, gotPath).Equal("/api/generate")
}

func TestTransportErrorIsRetried(t *testing.T) {
	// Refused connection counts as transient; the budget is exhausted.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client, err := llm.New(llm.Config{
		Provider: types.ProviderOpenAI,
		APIKey:   "sk-test",
		Model:    "gpt-4o-mini",
		BaseURL:  srv.URL,
		Retry:    fastRetry(),
	})
	gt.NoError(t, err).Required()

	_, err = client.Analyze(context.Background(), "content", "template", types.StyleGentle)
	gt.Error(t, err)
	gt.Bool(t, types.IsService(err)).True()
	gt.Bool(t, types.IsRetryable(err)).True()
}
