package floof

import (
	"context"
	"errors"
)

// A Run binds a parsed config to a UI and executes tasks from it.
type Run struct {
	dir   string
	tasks Tasks
	ui    UI
}

// NewRun creates a Run from a loaded config and a UI.
func NewRun(cfg *Config, ui UI) *Run {
	return &Run{
		dir:   cfg.Dir,
		tasks: cfg.Tasks,
		ui:    ui,
	}
}

// Start executes the named task and blocks until it finishes. Canceling ctx
// cancels the whole context tree underneath the task; in that case Start
// returns context.Canceled, which callers should treat as a clean shutdown.
func (r *Run) Start(ctx context.Context, taskName string) error {
	task, ok := r.tasks[taskName]
	if !ok {
		return configErrorf("no task named '%s' (tasks are: %v)", taskName, r.tasks.Names())
	}

	root := newRootContext(r, taskName)
	defer root.Cancel()
	root.set(varTaskStack, []string{taskName})

	stop := context.AfterFunc(ctx, root.Cancel)
	defer stop()

	err := runSequence(root, task)
	if errors.Is(err, context.Canceled) {
		return context.Canceled
	}
	return err
}
