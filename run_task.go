package floof

import (
	"strings"

	"github.com/floofdev/floof/internal/styles"
)

// runTaskOp executes another task's sequence in a child context. A task that
// is already on the invocation stack cannot be entered again: without this
// check, mutually-referencing tasks would recurse without bound.
type runTaskOp struct {
	task string
}

func (op *runTaskOp) Name() string { return "run-task" }

func (op *runTaskOp) Run(ctx *Context) error {
	task, ok := ctx.run.tasks[op.task]
	if !ok {
		return configErrorf("task '%s' does not exist", op.task)
	}

	stack := ctx.taskStack()
	for _, name := range stack {
		if name == op.task {
			return configErrorf("task cycle detected: %s -> %s",
				strings.Join(stack, " -> "), op.task)
		}
	}

	child := ctx.Child(op.task)
	defer child.Cancel()
	child.set(varTaskStack, append(append([]string{}, stack...), op.task))

	logf(child.writer(), styles.Log, "starting task")
	return runSequence(child, task)
}
