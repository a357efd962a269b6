package floof

import (
	"context"
	"errors"
	"fmt"
)

// An Operation is a single unit of work within a task: run a command, watch
// a file tree, serve HTTP, and so on.
//
// Run blocks until the operation is finished. It returns nil on success,
// context.Canceled if the operation was asked to stop, and any other error
// on failure. Cancelation is not a failure: the caller decides what a
// canceled child means for the enclosing composition.
type Operation interface {
	Name() string
	Run(ctx *Context) error
}

// runSequence executes ops one after another against ctx. The first failure
// or cancelation skips the remaining operations and becomes the outcome of
// the sequence.
func runSequence(ctx *Context, ops []Operation) error {
	for _, op := range ops {
		if ctx.Err() != nil {
			return context.Canceled
		}
		if err := op.Run(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return context.Canceled
			}
			return fmt.Errorf("operation `%s`: %w", op.Name(), err)
		}
	}
	return nil
}
