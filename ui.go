package floof

import "io"

// UI is where a Run sends its output. Each operation writes to the stream
// named by its context label, plus the reserved ids "http" for the server
// and broadcaster.
type UI interface {
	Writer(id string) io.Writer
}
