package model

import (
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/kagami-lab/kagami/pkg/domain/types"
)

// AnalysisRequest describes a single "analyze this content" request. It is
// ephemeral and never persisted.
type AnalysisRequest struct {
	Content  string
	Template string
	Style    types.Style
}

// Validate checks the request before it reaches any backend
func (r *AnalysisRequest) Validate() error {
	if strings.TrimSpace(r.Content) == "" {
		return goerr.New("content cannot be empty or whitespace only",
			goerr.T(types.ErrTagValidation))
	}
	if r.Style != "" && !r.Style.IsValid() {
		return goerr.New("invalid communication style",
			goerr.T(types.ErrTagValidation), goerr.V("style", r.Style))
	}
	return nil
}

// CacheStats reports diagnostic information about the analysis cache
type CacheStats struct {
	Size int
	TTL  time.Duration
}
