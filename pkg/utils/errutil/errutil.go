package errutil

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"

	"github.com/kagami-lab/kagami/pkg/utils/logging"
)

// Handle logs the error with a message and returns it unchanged so the
// caller can still propagate it. Structured goerr values and stacks are
// included when available.
func Handle(ctx context.Context, err error, msg string) error {
	if err == nil {
		return nil
	}

	logger := logging.From(ctx)

	var ge *goerr.Error
	if errors.As(err, &ge) {
		logger.Error(msg,
			"error", err.Error(),
			"values", ge.Values(),
			"stack", ge.Stacks(),
		)
	} else {
		logger.Error(msg, "error", err.Error())
	}

	return err
}
