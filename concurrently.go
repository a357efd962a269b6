package floof

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// concurrentlyOp starts all children at once, each in its own child context
// under a common parent. The group finishes when every child has finished.
// The first failing child cancels its siblings and becomes the group's
// outcome; canceling the group cancels all children.
type concurrentlyOp struct {
	children []Operation
}

func (op *concurrentlyOp) Name() string { return "concurrently" }

func (op *concurrentlyOp) Run(ctx *Context) error {
	contexts := make([]*Context, len(op.children))
	for i := range op.children {
		contexts[i] = ctx.Child("")
	}
	cancelAll := func() {
		for _, c := range contexts {
			c.Cancel()
		}
	}
	defer cancelAll()

	// Children that are canceled report nil here, so g.Wait() yields the
	// first genuine failure. Siblings canceled as a consequence of that
	// failure cannot mask it.
	var g errgroup.Group
	for i, child := range op.children {
		i, child := i, child
		g.Go(func() error {
			err := child.Run(contexts[i])
			if errors.Is(err, context.Canceled) {
				return nil
			}
			if err != nil {
				cancelAll()
			}
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if ctx.Err() != nil {
		return context.Canceled
	}
	return nil
}
