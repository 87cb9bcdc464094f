package config

import (
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/kagami-lab/kagami/pkg/domain/interfaces"
	"github.com/kagami-lab/kagami/pkg/domain/types"
	"github.com/kagami-lab/kagami/pkg/service/llm"
)

// LLM holds configuration for the AI backend client
type LLM struct {
	provider string
	apiKey   string
	model    string
	baseURL  string
	timeout  time.Duration
}

// Flags returns CLI flags for AI backend configuration
func (l *LLM) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "provider",
			Usage:       "AI provider [openai, anthropic, ollama]",
			Value:       string(types.ProviderOpenAI),
			Sources:     cli.EnvVars("KAGAMI_PROVIDER"),
			Destination: &l.provider,
		},
		&cli.StringFlag{
			Name:        "api-key",
			Usage:       "API key for the AI provider",
			Sources:     cli.EnvVars("KAGAMI_API_KEY"),
			Destination: &l.apiKey,
		},
		&cli.StringFlag{
			Name:        "model",
			Usage:       "Model name for the selected provider",
			Sources:     cli.EnvVars("KAGAMI_MODEL"),
			Destination: &l.model,
		},
		&cli.StringFlag{
			Name:        "base-url",
			Usage:       "Override the provider API base URL",
			Sources:     cli.EnvVars("KAGAMI_BASE_URL"),
			Destination: &l.baseURL,
		},
		&cli.DurationFlag{
			Name:        "timeout",
			Usage:       "HTTP timeout per request",
			Value:       60 * time.Second,
			Sources:     cli.EnvVars("KAGAMI_TIMEOUT"),
			Destination: &l.timeout,
		},
	}
}

// LogAttrs returns log attributes for the AI backend configuration. The API
// key is deliberately excluded.
func (l *LLM) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("provider", l.provider),
		slog.String("model", l.model),
		slog.String("base_url", l.baseURL),
		slog.Duration("timeout", l.timeout),
		slog.Bool("api_key_set", l.apiKey != ""),
	}
}

// Configure creates the AI backend client from the configured flags
func (l *LLM) Configure() (interfaces.Client, error) {
	return llm.New(llm.Config{
		Provider: types.Provider(l.provider),
		APIKey:   l.apiKey,
		Model:    l.model,
		BaseURL:  l.baseURL,
		Timeout:  l.timeout,
	})
}
