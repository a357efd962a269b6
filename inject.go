package floof

import "bytes"

// reloadShim is the script injected into HTML responses. The reload signal
// is the server closing the WebSocket: the shim installs its reload handler
// only after `open` has fired, so a close that arrives before open is
// treated as a connection failure rather than a reload.
const reloadShim = `<script>
  const addr = 'ws://localhost:%WS_PORT%';
  const socket = new WebSocket(addr);
  function reload(){ location.reload(); }
  function fail(){ console.error("floof: could not connect to " + addr); }
  socket.addEventListener("close", fail);
  socket.addEventListener("open", () => {
    socket.removeEventListener("close", fail);
    socket.addEventListener("close", reload);
  });
</script>`

// injectShim inserts the shim immediately before the final `</body>` that is
// not inside an HTML comment, or at the end of the document if there is
// none. It never dedups: injecting into a body that already carries the shim
// injects again.
func injectShim(input, shim []byte) []byte {
	insertIdx := len(input)
	insideComment := false
	for i := range input {
		rest := input[i:]
		switch {
		case !insideComment && bytes.HasPrefix(rest, []byte("</body>")):
			insertIdx = i
		case !insideComment && bytes.HasPrefix(rest, []byte("<!--")):
			insideComment = true
		case insideComment && bytes.HasPrefix(rest, []byte("-->")):
			insideComment = false
		}
	}

	out := make([]byte, 0, len(input)+len(shim))
	out = append(out, input[:insertIdx]...)
	out = append(out, shim...)
	out = append(out, input[insertIdx:]...)
	return out
}
