package floof

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/floofdev/floof/internal/styles"
)

// httpOp runs an HTTP server until its context is canceled. The server is
// published into the current context so that descendant `reload` operations
// can find it.
type httpOp struct {
	proxy  string
	serve  string
	addr   string
	wsAddr string
}

func (op *httpOp) Name() string { return "http" }

func (op *httpOp) Run(ctx *Context) error {
	serveDir := op.serve
	if serveDir != "" {
		serveDir = ctx.joinWorkdir(serveDir)
	}
	srv := &Server{
		proxyTarget: op.proxy,
		serveDir:    serveDir,
		addr:        op.addr,
		wsAddr:      op.wsAddr,
		log:         ctx.run.ui.Writer("http"),
		sessions:    newSessionSet(),
	}
	ctx.set(varServer, srv)
	return srv.run(ctx.std())
}

// Server is the HTTP reverse proxy (or static file server) plus the
// WebSocket reload broadcaster, bound as a pair.
type Server struct {
	// exactly one of proxyTarget ("host:port") and serveDir is set.
	proxyTarget string
	serveDir    string

	addr   string
	wsAddr string

	log      io.Writer
	sessions *sessionSet
}

// run binds both listeners and serves until ctx is canceled. A bind failure
// is fatal to this operation; per-request upstream failures are not.
func (s *Server) run(ctx context.Context) error {
	httpLn, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("binding %s: %w", s.addr, err)
	}
	wsLn, err := net.Listen("tcp", s.wsAddr)
	if err != nil {
		httpLn.Close()
		return fmt.Errorf("binding %s: %w", s.wsAddr, err)
	}

	httpSrv := &http.Server{Handler: s.handler()}
	wsSrv := &http.Server{Handler: s.wsHandler()}

	logf(s.log, styles.Log, "listening on http://%s", s.addr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return ignoreServerClosed(httpSrv.Serve(httpLn)) })
	g.Go(func() error { return ignoreServerClosed(wsSrv.Serve(wsLn)) })
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		httpSrv.Shutdown(shutdownCtx)
		wsSrv.Shutdown(shutdownCtx)
		for _, conn := range s.sessions.drain() {
			conn.Close()
		}
		return gctx.Err()
	})

	if err := g.Wait(); !errors.Is(err, context.Canceled) {
		return err
	}
	return context.Canceled
}

func ignoreServerClosed(err error) error {
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) shim() []byte {
	_, port, err := net.SplitHostPort(s.wsAddr)
	if err != nil {
		port = "8031"
	}
	return []byte(strings.ReplaceAll(reloadShim, "%WS_PORT%", port))
}

func (s *Server) handler() http.Handler {
	if s.proxyTarget != "" {
		return s.proxyHandler()
	}
	return s.serveHandler()
}

// proxyHandler forwards requests to the proxy target, injecting the reload
// shim into HTML responses. Hop-by-hop headers are stripped by
// httputil.ReverseProxy; the original Host header is preserved.
func (s *Server) proxyHandler() http.Handler {
	target := &url.URL{Scheme: "http", Host: s.proxyTarget}
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.Out.Host = pr.In.Host
		},
		ModifyResponse: func(resp *http.Response) error {
			if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
				return nil
			}
			if resp.Header.Get("Content-Encoding") != "" {
				// A compressed body would have to be decoded first;
				// pass it through untouched instead.
				return nil
			}
			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return err
			}
			injected := injectShim(body, s.shim())
			resp.Body = io.NopCloser(bytes.NewReader(injected))
			resp.ContentLength = int64(len(injected))
			resp.Header.Set("Content-Length", strconv.Itoa(len(injected)))
			return nil
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logf(s.log, styles.Error, "failed to reach %s: %s", s.proxyTarget, err)
			w.Header().Set("Content-Type", "text/html")
			w.WriteHeader(http.StatusBadGateway)
			fmt.Fprintf(w, gatewayErrorPage, s.proxyTarget, err, s.shim())
		},
	}
}

const gatewayErrorPage = `<html>
  <head><title>floof can't reach the proxy target</title></head>
  <body>
    <h1>floof failed to connect to the proxy target</h1>
    <pre>target: %s

%s</pre>
    %s
  </body>
</html>`

// serveHandler serves static files from serveDir, routing HTML responses
// through the same shim injection as the proxy.
func (s *Server) serveHandler() http.Handler {
	files := http.FileServer(http.Dir(s.serveDir))
	shim := s.shim()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		iw := &injectingWriter{ResponseWriter: w, shim: shim}
		files.ServeHTTP(iw, r)
		iw.finish()
	})
}

// injectingWriter buffers HTML responses so the shim can be injected and
// Content-Length corrected before anything reaches the wire. Non-HTML
// responses stream straight through.
type injectingWriter struct {
	http.ResponseWriter
	shim []byte

	wroteHeader bool
	html        bool
	status      int
	buf         bytes.Buffer
}

func (w *injectingWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	w.status = status
	w.html = strings.HasPrefix(w.Header().Get("Content-Type"), "text/html")
	if !w.html {
		w.ResponseWriter.WriteHeader(status)
	}
}

func (w *injectingWriter) Write(bs []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	if w.html {
		return w.buf.Write(bs)
	}
	return w.ResponseWriter.Write(bs)
}

func (w *injectingWriter) finish() {
	if !w.html {
		return
	}
	out := injectShim(w.buf.Bytes(), w.shim)
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	w.ResponseWriter.WriteHeader(w.status)
	w.ResponseWriter.Write(out)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// wsHandler accepts reload sessions on any path. Incoming messages are
// ignored; the server only ever closes the connection.
func (s *Server) wsHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		id := s.sessions.add(conn)
		go s.keepAlive(conn, id)
	})
}

const pingInterval = 30 * time.Second

// keepAlive owns the session after registration: it discards incoming
// messages, pings periodically, and unregisters on the first error.
func (s *Server) keepAlive(conn *websocket.Conn, id string) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			s.sessions.del(id)
			conn.Close()
			return
		case <-ticker.C:
			deadline := time.Now().Add(time.Second)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				s.sessions.del(id)
				conn.Close()
				return
			}
		}
	}
}

// BroadcastReload closes every registered session, which the injected shim
// interprets as a reload signal. Slow or dead clients are dropped: writing
// the close frame to a client is given at most one second.
func (s *Server) BroadcastReload() {
	conns := s.sessions.drain()
	logf(s.log, styles.Log, "reloading %d active session(s)", len(conns))
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "reload")
	for _, conn := range conns {
		conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		conn.Close()
	}
}
