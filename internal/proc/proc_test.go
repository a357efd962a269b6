package proc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floofdev/floof/internal/safebuffer"
)

func TestRunOK(t *testing.T) {
	buf := safebuffer.New()
	cmd := Command{Argv: []string{"echo", "hi"}}

	err := cmd.Run(context.Background(), buf, buf)

	require.NoError(t, err)
	assert.Equal(t, "hi\n", buf.String())
}

func TestRunArgvIsLiteral(t *testing.T) {
	buf := safebuffer.New()
	// No shell: the glob and the variable reach echo untouched.
	cmd := Command{Argv: []string{"echo", "*", "$HOME"}}

	err := cmd.Run(context.Background(), buf, buf)

	require.NoError(t, err)
	assert.Equal(t, "* $HOME\n", buf.String())
}

func TestRunNonZeroExit(t *testing.T) {
	buf := safebuffer.New()
	cmd := Command{Argv: []string{"false"}}

	err := cmd.Run(context.Background(), buf, buf)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.Code)
}

func TestRunWorkdir(t *testing.T) {
	buf := safebuffer.New()
	cmd := Command{Argv: []string{"pwd"}, Dir: "/tmp"}

	err := cmd.Run(context.Background(), buf, buf)

	require.NoError(t, err)
	assert.Equal(t, "/tmp", strings.TrimSpace(buf.String()))
}

func TestRunEmptyArgv(t *testing.T) {
	err := Command{}.Run(context.Background(), safebuffer.New(), safebuffer.New())
	assert.Error(t, err)
}

func TestRunCancelKillsProcess(t *testing.T) {
	buf := safebuffer.New()
	cmd := Command{Argv: []string{"sleep", "10"}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cmd.Run(ctx, buf, buf) }()

	time.Sleep(100 * time.Millisecond)
	start := time.Now()
	cancel()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
		assert.Less(t, time.Since(start), 2*time.Second, "kill was not prompt")
	case <-time.After(5 * time.Second):
		t.Fatal("process survived cancelation")
	}
}

func TestRunCancelKillsProcessGroup(t *testing.T) {
	buf := safebuffer.New()
	// The sleep is a grandchild via sh; killing only the immediate child
	// would leave it running.
	cmd := Command{Argv: []string{"sh", "-c", "sleep 10 & echo $!; wait"}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cmd.Run(ctx, buf, buf) }()

	time.Sleep(200 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("process survived cancelation")
	}

	pidStr := strings.TrimSpace(buf.String())
	require.NotEmpty(t, pidStr)
	var pid int
	_, err := fmt.Sscan(pidStr, &pid)
	require.NoError(t, err)

	// Give the kernel a moment to reap, then probe with signal 0.
	time.Sleep(100 * time.Millisecond)
	assert.Error(t, syscall.Kill(pid, 0), "grandchild still alive")
}
