package floof

import (
	"os"

	"github.com/floofdev/floof/internal/styles"
)

// setWorkdirOp writes a resolved absolute path into the current context under
// the workdir key. It never mutates parents, so the new working directory is
// visible to later operations in the same sequence and to their descendants,
// and reverts when the enclosing context ends.
type setWorkdirOp struct {
	path string
}

func (op *setWorkdirOp) Name() string { return "set-workdir" }

func (op *setWorkdirOp) Run(ctx *Context) error {
	dir := ctx.joinWorkdir(op.path)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return configErrorf("'%s' is not a valid path to a directory (or it is inaccessible)", dir)
	}

	logf(ctx.writer(), styles.Log, "working directory is now %s", dir)
	ctx.set(varWorkdir, dir)
	return nil
}
