package floof

import (
	"context"
	"errors"
	"time"

	"github.com/gobwas/glob"

	"github.com/floofdev/floof/internal/styles"
	"github.com/floofdev/floof/internal/watcher"
)

// watchOp runs its body once on startup, then again after every debounced
// change event from the watched paths. A change arriving while the body is
// still running cancels the in-flight body first; a new generation begins
// only after the previous one has fully unwound. The operation itself only
// ever finishes by being canceled.
type watchOp struct {
	paths    []string
	ignore   []glob.Glob
	debounce time.Duration
	body     []Operation
}

func (op *watchOp) Name() string { return "watch" }

func (op *watchOp) Run(ctx *Context) error {
	paths := make([]string, len(op.paths))
	for i, p := range op.paths {
		paths[i] = ctx.joinWorkdir(p)
	}

	changes, stop, err := watcher.Watch(paths, op.debounce, op.ignore)
	if err != nil {
		return err
	}
	defer stop()

	w := ctx.writer()
	logf(w, styles.Log, "watching %d path(s)", len(paths))

	triggered := false
	for {
		if triggered {
			logf(w, styles.Log, "change detected: running operations")
		}

		body := ctx.Child("")
		body.set(varTriggered, triggered)

		done := make(chan error, 1)
		go func() { done <- runSequence(body, op.body) }()

		select {
		case err := <-done:
			body.Cancel()
			if err != nil && !errors.Is(err, context.Canceled) {
				// A failing body does not stop the watch; it goes
				// back to waiting for the next change.
				logf(w, styles.Error, "%s", err)
			}
			select {
			case <-ctx.Done():
				return context.Canceled
			case <-changes:
			}

		case <-changes:
			// The debouncer already guaranteed the configured silence
			// before delivering this event, so once the old generation
			// has unwound we can start the next one immediately.
			logf(w, styles.Log, "change detected while operations were running: canceling them")
			body.Cancel()
			<-done

		case <-ctx.Done():
			body.Cancel()
			<-done
			return context.Canceled
		}

		triggered = true
	}
}
