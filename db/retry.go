package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jrife/kaeru/storage/kv"
	"go.uber.org/zap"
)

// attemptFunc builds the batch for one attempt. attempt
// starts at 1. An error aborts the retry loop.
type attemptFunc func(attempt int) (kv.Batch, error)

// retry runs attempts until one of them commits. A batch
// rejected with kv.ErrConflict leads to another attempt. Any
// other error ends the loop. The context is only consulted
// between attempts; a commit that has started always runs to
// completion.
func (db *DB) retry(ctx context.Context, logger *zap.Logger, build attemptFunc) error {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		batch, err := build(attempt)

		if err != nil {
			return err
		}

		err = batch.Commit()

		if err == nil {
			logger.Debug("committed", zap.Int("attempt", attempt))

			return nil
		}

		if !errors.Is(err, kv.ErrConflict) {
			return fmt.Errorf("could not commit: %w", err)
		}

		logger.Debug("conflict, retrying", zap.Int("attempt", attempt))
	}
}
