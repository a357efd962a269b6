package floof

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/floofdev/floof/internal/color"
	"github.com/floofdev/floof/internal/mutex"
)

// NewPrinter returns a UI that interleaves all streams onto stdout. Every
// line gets a right-aligned key column; the color-hashed key itself is
// written only on the first line after the stream changes, and later lines
// of the same stream leave the column blank. When stdout is not a terminal
// the prefix is kept but the styling is dropped.
func NewPrinter(stdout io.Writer) UI {
	isTTY := false
	if f, ok := stdout.(*os.File); ok {
		isTTY = term.IsTerminal(int(f.Fd()))
	}
	return &printer{
		mu:     mutex.New("printer"),
		stdout: stdout,
		isTTY:  isTTY,
	}
}

type printer struct {
	mu        *mutex.Mutex
	stdout    io.Writer
	isTTY     bool
	keyLength int
	lastKey   string
}

// *printer implements UI
var _ UI = &printer{}

func (p *printer) Writer(id string) io.Writer {
	return printerWriter{p, id}
}

type printerWriter struct {
	printer *printer
	id      string
}

var _ io.Writer = printerWriter{}

func (w printerWriter) Write(bs []byte) (int, error) {
	w.printer.write(w.id, string(bs))
	return len(bs), nil
}

func (p *printer) write(key, message string) {
	defer p.mu.Lock("write").Unlock()

	if len(key) > p.keyLength {
		p.keyLength = len(key)
	}

	for _, l := range strings.Split(strings.TrimRight(message, "\n"), "\n") {
		k := ""
		space := ""
		if key != p.lastKey {
			if p.lastKey != "" {
				space = "\n"
			}
			k, p.lastKey = key, key
		}

		if !p.isTTY {
			fmt.Fprintf(p.stdout, "%s%*s | %s\n", space, p.keyLength, k, stripANSI(l))
			continue
		}

		keyStyle := keyStyle.Foreground(color.Hash(key))
		fmt.Fprintln(p.stdout, space+lipgloss.JoinHorizontal(
			lipgloss.Top,
			keyStyle.Width(p.keyLength).Render(k),
			l,
		))
	}
}

var keyStyle = lipgloss.NewStyle().
	Height(1).
	Align(lipgloss.Right).
	Margin(0, 2).
	Padding(0).
	BorderRight(true)

// stripANSI removes styling escape sequences from a line, for non-terminal
// output.
func stripANSI(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case inEscape:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
		case r == '\x1b':
			inEscape = true
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
