package types_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/kagami-lab/kagami/pkg/domain/types"
)

func TestIsRetryable(t *testing.T) {
	cases := map[string]struct {
		err  error
		want bool
	}{
		"nil": {
			err:  nil,
			want: false,
		},
		"validation": {
			err:  goerr.New("bad input", goerr.T(types.ErrTagValidation)),
			want: false,
		},
		"service without retryable tag": {
			err:  goerr.New("auth failed", goerr.T(types.ErrTagService)),
			want: false,
		},
		"service with retryable tag": {
			err:  goerr.New("rate limited", goerr.T(types.ErrTagService), goerr.T(types.ErrTagRetryable)),
			want: true,
		},
		"untagged defaults to retryable": {
			err:  errors.New("connection reset"),
			want: true,
		},
		"wrapped service error": {
			err: goerr.Wrap(
				goerr.New("server error", goerr.T(types.ErrTagService), goerr.T(types.ErrTagRetryable)),
				"analyze failed"),
			want: true,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			gt.Value(t, types.IsRetryable(tc.err)).Equal(tc.want)
		})
	}
}

func TestKindPredicates(t *testing.T) {
	validation := goerr.New("v", goerr.T(types.ErrTagValidation))
	service := goerr.New("s", goerr.T(types.ErrTagService))
	persistence := goerr.New("p", goerr.T(types.ErrTagPersistence))

	gt.Bool(t, types.IsValidation(validation)).True()
	gt.Bool(t, types.IsValidation(service)).False()

	gt.Bool(t, types.IsService(service)).True()
	gt.Bool(t, types.IsService(persistence)).False()

	gt.Bool(t, types.IsPersistence(persistence)).True()
	gt.Bool(t, types.IsPersistence(validation)).False()
}
