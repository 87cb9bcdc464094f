package interfaces

import (
	"context"

	"github.com/kagami-lab/kagami/pkg/domain/types"
)

// Client is the uniform surface over AI backend providers. Implementations
// own their provider's wire format, auth scheme, and retry policy.
type Client interface {
	// Analyze sends content with an analysis template and communication style
	// and returns the generated analysis text.
	Analyze(ctx context.Context, content, template string, style types.Style) (string, error)

	// Generate sends a free-form prompt without the content/template/style
	// structure and returns the generated text.
	Generate(ctx context.Context, prompt string) (string, error)
}
