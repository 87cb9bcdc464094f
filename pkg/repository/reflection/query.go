package reflection

import (
	"strings"

	"github.com/kagami-lab/kagami/pkg/domain/model"
)

// matches reports whether the entry satisfies every criterion in the query.
// An empty query matches everything.
func matches(entry *model.Reflection, query model.ReflectionQuery) bool {
	if query.Text != "" {
		if !containsFold(entry.ReflectionText, query.Text) {
			return false
		}
	}

	if len(query.Tags) > 0 {
		if !matchesAny(entry.Tags, query.Tags) {
			return false
		}
	}

	if len(query.Keywords) > 0 {
		if !matchesAny(entry.Keywords, query.Keywords) {
			return false
		}
	}

	if query.DateFrom != "" && entry.Date < query.DateFrom {
		return false
	}
	if query.DateTo != "" && entry.Date > query.DateTo {
		return false
	}

	if query.SourcePath != "" && !strings.Contains(entry.SourceNotePath, query.SourcePath) {
		return false
	}

	return true
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// matchesAny reports whether any query value appears in the entry values
func matchesAny(entryValues, queryValues []string) bool {
	for _, qv := range queryValues {
		for _, ev := range entryValues {
			if ev == qv {
				return true
			}
		}
	}
	return false
}
