package floof

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/floofdev/floof/internal/proc"
	"github.com/floofdev/floof/internal/styles"
)

// commandOp runs one external process. Argv is passed through exactly: no
// shell, no expansion, no quoting rules.
type commandOp struct {
	argv    []string
	workdir string
}

func (op *commandOp) Name() string { return "command" }

func (op *commandOp) Run(ctx *Context) error {
	dir := ctx.Workdir()
	if op.workdir != "" {
		dir = ctx.joinWorkdir(op.workdir)
	}

	w := ctx.writer()
	logf(w, styles.Log, "$ %s", strings.Join(op.argv, " "))

	cmd := proc.Command{Argv: op.argv, Dir: dir}
	if err := cmd.Run(ctx.std(), w, w); err != nil {
		return err
	}
	return nil
}

func logf(w io.Writer, style lipgloss.Style, format string, args ...interface{}) {
	fmt.Fprintln(w, style.Render(fmt.Sprintf(format, args...)))
}
