package usecase

import (
	"context"

	"github.com/kagami-lab/kagami/pkg/domain/model"
	"github.com/kagami-lab/kagami/pkg/domain/types"
	"github.com/kagami-lab/kagami/pkg/utils/errutil"
	"github.com/kagami-lab/kagami/pkg/utils/logging"
	"github.com/kagami-lab/kagami/pkg/utils/sanitize"
)

// AnalyzeOption carries optional per-call metadata
type AnalyzeOption func(*analyzeParams)

type analyzeParams struct {
	noteID   string
	notePath string
}

// WithNote attaches the source note so the analysis is recorded in the
// reflection history.
func WithNote(id, path string) AnalyzeOption {
	return func(p *analyzeParams) {
		p.noteID = id
		p.notePath = path
	}
}

// AnalyzeContent runs one analysis request. The pipeline is strictly
// validate, sanitize, cache lookup, backend call, cache store, reflection
// append; any failing step short-circuits the rest. Reflection recording is
// best effort and never fails the analysis.
func (uc *UseCases) AnalyzeContent(ctx context.Context, content, template string, style types.Style, opts ...AnalyzeOption) (string, error) {
	params := &analyzeParams{}
	for _, opt := range opts {
		opt(params)
	}

	req := model.AnalysisRequest{
		Content:  content,
		Template: template,
		Style:    style,
	}
	if err := req.Validate(); err != nil {
		return "", err
	}

	sanitized := content
	if uc.marker != "" {
		sanitized = sanitize.RemovePrivateSections(content, uc.marker)
	}

	key := cacheKey(sanitized, template, style)
	if cached, ok := uc.cache.Get(key); ok {
		logging.From(ctx).Debug("analysis cache hit", "template", template, "style", style)
		return cached, nil
	}

	result, err := uc.client.Analyze(ctx, sanitized, template, style)
	if err != nil {
		return "", err
	}

	uc.cache.Set(key, result)

	if params.notePath != "" && uc.reflections != nil {
		uc.recordReflection(ctx, params, result)
	}

	return result, nil
}

// recordReflection appends the analysis to the reflection history. Failures
// are logged and swallowed so the caller still receives the result.
func (uc *UseCases) recordReflection(ctx context.Context, params *analyzeParams, result string) {
	entry := &model.Reflection{
		Date:           uc.now().Format("2006-01-02"),
		SourceNotePath: params.notePath,
		ReflectionText: result,
	}
	stored, err := uc.reflections.Add(ctx, entry)
	if err != nil {
		_ = errutil.Handle(ctx, err, "failed to record reflection")
		return
	}
	logging.From(ctx).Debug("recorded reflection",
		"id", stored.ID,
		"note_id", params.noteID,
		"note_path", params.notePath,
	)
}

// GenerateText runs a free-form generation request. Results are not cached.
func (uc *UseCases) GenerateText(ctx context.Context, prompt string) (string, error) {
	req := model.AnalysisRequest{Content: prompt}
	if err := req.Validate(); err != nil {
		return "", err
	}
	return uc.client.Generate(ctx, prompt)
}

// ClearCache drops all cached analysis results
func (uc *UseCases) ClearCache() {
	uc.cache.Clear()
}

// CacheStats reports the current cache size and configured TTL
func (uc *UseCases) CacheStats() model.CacheStats {
	return model.CacheStats{
		Size: uc.cache.Size(),
		TTL:  uc.cache.TTL(),
	}
}
