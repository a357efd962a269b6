package floof

import (
	"io"
	"sync"

	"github.com/floofdev/floof/internal/safebuffer"
)

// funcOp adapts a function into an Operation for tests.
type funcOp struct {
	name string
	fn   func(*Context) error
}

func (op *funcOp) Name() string {
	if op.name == "" {
		return "func"
	}
	return op.name
}

func (op *funcOp) Run(ctx *Context) error { return op.fn(ctx) }

type syncBuffer interface {
	io.Writer
	String() string
}

// testUI captures each stream's output in its own concurrency-safe buffer.
type testUI struct {
	mu   sync.Mutex
	bufs map[string]syncBuffer
}

func newTestUI() *testUI {
	return &testUI{bufs: map[string]syncBuffer{}}
}

func (ui *testUI) Writer(id string) io.Writer {
	ui.mu.Lock()
	defer ui.mu.Unlock()
	if _, ok := ui.bufs[id]; !ok {
		ui.bufs[id] = safebuffer.New()
	}
	return ui.bufs[id]
}

func (ui *testUI) output(id string) string {
	ui.mu.Lock()
	defer ui.mu.Unlock()
	if buf, ok := ui.bufs[id]; ok {
		return buf.String()
	}
	return ""
}

func newTestRun(dir string, tasks Tasks) *Run {
	return &Run{dir: dir, tasks: tasks, ui: newTestUI()}
}
