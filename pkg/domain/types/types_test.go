package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/kagami-lab/kagami/pkg/domain/types"
)

func TestStyleIsValid(t *testing.T) {
	gt.Bool(t, types.StyleDirect.IsValid()).True()
	gt.Bool(t, types.StyleGentle.IsValid()).True()
	gt.Bool(t, types.Style("sarcastic").IsValid()).False()
	gt.Bool(t, types.Style("").IsValid()).False()
}

func TestProviderIsValid(t *testing.T) {
	for _, p := range types.AllProviders() {
		gt.Bool(t, p.IsValid()).True()
	}
	gt.Bool(t, types.Provider("bard").IsValid()).False()
}
