package floof

import (
	"context"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/floofdev/floof/internal/styles"
)

// reloadOp asks the nearest enclosing HTTP server to reload its browser
// sessions. In reverse-proxy mode the broadcast waits (in the background)
// until the proxy target accepts TCP connections, so a body like
// [reload, run-the-server] reloads only once the restarted server is
// actually reachable. In static-serve mode it broadcasts immediately.
type reloadOp struct{}

func (op *reloadOp) Name() string { return "reload" }

func (op *reloadOp) Run(ctx *Context) error {
	srv := ctx.server()
	if srv == nil {
		return configErrorf("`reload` executed, but no HTTP server is registered in this context or any of its parents")
	}
	go srv.reloadWhenReady(ctx.std())
	return nil
}

const portWaitTimeout = 30 * time.Second

// reloadWhenReady probes the proxy target before broadcasting, bounded by
// ctx and by an overall ceiling: if the port never opens, the reload is
// dropped with a warning rather than delivered to a dead backend.
func (s *Server) reloadWhenReady(ctx context.Context) {
	if s.proxyTarget != "" {
		if !waitForPort(ctx, s.proxyTarget) {
			if ctx.Err() == nil {
				logf(s.log, styles.Error, "proxy port %s did not open: not reloading", s.proxyTarget)
			}
			return
		}
	}
	s.BroadcastReload()
}

// waitForPort retries a TCP connect with exponential backoff until the
// target accepts, ctx is canceled, or the ceiling elapses.
func waitForPort(ctx context.Context, target string) bool {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 20 * time.Millisecond
	bo.MaxInterval = 500 * time.Millisecond
	bo.MaxElapsedTime = portWaitTimeout

	dial := func() error {
		d := net.Dialer{Timeout: time.Second}
		conn, err := d.DialContext(ctx, "tcp", target)
		if err != nil {
			return err
		}
		conn.Close()
		return nil
	}

	return backoff.Retry(dial, backoff.WithContext(bo, ctx)) == nil
}
