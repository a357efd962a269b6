package floof

// onChangeOp wraps another operation and dispatches it only when the current
// watch body generation was started by a file change. On the initial run it
// is a successful no-op. Outside any watch body it is a config error; Load
// already rejects that statically, this is the dispatch-time backstop.
type onChangeOp struct {
	inner Operation
}

func (op *onChangeOp) Name() string { return "on-change" }

func (op *onChangeOp) Run(ctx *Context) error {
	triggered, inWatch := ctx.triggeredByChange()
	if !inWatch {
		return configErrorf("`on-change` can only be used inside the body of a `watch` operation")
	}
	if !triggered {
		return nil
	}
	return op.inner.Run(ctx)
}
