package floof

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floofdev/floof/internal/proc"
)

func writeConfig(t *testing.T, yaml string) *Config {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFilename)
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)
	return cfg
}

func TestStartPlainCommandSequence(t *testing.T) {
	cfg := writeConfig(t, `
default:
  - echo hi
  - echo bye
`)
	ui := newTestUI()
	run := NewRun(cfg, ui)

	err := run.Start(context.Background(), "default")

	require.NoError(t, err)
	out := ui.output("default")
	assert.Contains(t, out, "hi")
	assert.Contains(t, out, "bye")
	assert.Less(t, strings.Index(out, "hi"), strings.Index(out, "bye"))
}

func TestStartFailFast(t *testing.T) {
	cfg := writeConfig(t, `
default:
  - "false"
  - echo never
`)
	ui := newTestUI()
	run := NewRun(cfg, ui)

	err := run.Start(context.Background(), "default")

	var exitErr *proc.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.NotContains(t, ui.output("default"), "never")
}

func TestStartWorkdirInheritance(t *testing.T) {
	cfg := writeConfig(t, `
default:
  - set-workdir: /tmp
  - command: { run: ["pwd"] }
  - run-task: foo
foo:
  - command: { run: ["pwd"] }
`)
	ui := newTestUI()
	run := NewRun(cfg, ui)

	require.NoError(t, run.Start(context.Background(), "default"))

	assert.Contains(t, ui.output("default"), "/tmp")
	assert.Contains(t, ui.output("foo"), "/tmp")
}

func TestStartUnknownTask(t *testing.T) {
	cfg := writeConfig(t, `
default:
  - echo hi
`)
	run := NewRun(cfg, newTestUI())

	err := run.Start(context.Background(), "nope")

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestStartWatchCancelAndRestart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFilename)
	require.NoError(t, os.WriteFile(path, []byte(`
default:
  - watch:
      paths: ["."]
      debounce: 100
      run: ["sleep 5"]
`), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)

	ui := newTestUI()
	run := NewRun(cfg, ui)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run.Start(ctx, "default") }()

	starts := func() int { return strings.Count(ui.output("default"), "$ sleep 5") }
	require.Eventually(t, func() bool { return starts() == 1 },
		5*time.Second, 20*time.Millisecond, "initial body run missing")

	// Touching a watched file while the sleep is in flight kills it and,
	// after the debounce of silence, starts a fresh generation.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x"), []byte("change"), 0o644))

	require.Eventually(t, func() bool { return starts() >= 2 },
		10*time.Second, 20*time.Millisecond, "body was not restarted after change")

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(10 * time.Second):
		t.Fatal("run did not unwind after cancel")
	}
}
