// Package proc runs external commands with robust cancelation. Commands are
// started with an exact argv — there is no shell involved, no variable
// expansion, and no globbing.
package proc

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"syscall"

	"github.com/floofdev/floof/internal/mutex"
)

// ExitError reports a process that ran to completion with a non-zero status.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit %d", e.Code)
}

// Command describes one external process invocation. Argv[0] is the program;
// the remaining elements are passed as literal arguments. If Dir is empty the
// process runs in the current working directory. The process inherits the
// parent environment.
type Command struct {
	Argv []string
	Dir  string
}

// Run starts the process and blocks until it exits or ctx is canceled.
//
// Stdout and stderr are streamed to the given writers a line at a time.
//
// On cancelation the whole process group receives SIGKILL and Run returns
// ctx.Err() once the process has been reaped. A non-zero exit status is
// returned as *ExitError.
func (c Command) Run(ctx context.Context, stdout, stderr io.Writer) error {
	return (&execution{
		command: c,
		cmdMu:   mutex.New("proc"),
		stdout:  stdout,
		stderr:  stderr,
	}).run(ctx)
}

type execution struct {
	command Command

	cmd   *exec.Cmd
	cmdMu *mutex.Mutex

	stdout io.Writer
	stderr io.Writer
}

func (x *execution) run(ctx context.Context) error {
	if len(x.command.Argv) == 0 {
		return fmt.Errorf("empty argv")
	}

	if err := x.startCmd(); err != nil {
		return err
	}

	exit := x.wait()
	select {
	case err := <-exit:
		return err

	case <-ctx.Done():
	}

	// Canceled. Kill the process group outright: the operation is about to
	// be restarted, so there is no point in a graceful shutdown.
	x.sigkill()
	<-exit

	return ctx.Err()
}

func (x *execution) startCmd() error {
	defer x.cmdMu.Lock("startCmd").Unlock()

	argv := x.command.Argv
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Dir = x.command.Dir
	cmd.Stdout = newLineWriter(x.stdout)
	cmd.Stderr = newLineWriter(x.stderr)

	if err := cmd.Start(); err != nil {
		return err
	}
	x.cmd = cmd
	return nil
}

func (x *execution) wait() <-chan error {
	exit := make(chan error, 1)
	go func() {
		err := x.getCmd().Wait()
		switch err := err.(type) {
		case nil:
			exit <- nil
		case *exec.ExitError:
			exit <- &ExitError{Code: err.ExitCode()}
		default:
			exit <- fmt.Errorf("wait: %w", err)
		}
	}()
	return exit
}

func (x *execution) sigkill() {
	defer x.cmdMu.Lock("sigkill").Unlock()

	if x.cmd == nil || x.cmd.Process == nil {
		return
	}
	if err := syscall.Kill(-x.cmd.Process.Pid, syscall.SIGKILL); err != nil && !strings.Contains(err.Error(), "no such process") {
		// The process may have exited between the cancel and the kill.
		// Anything else is unexpected but not actionable here.
		x.cmdMu.Printf("sigkill: %s", err)
	}
}

func (x *execution) getCmd() *exec.Cmd {
	defer x.cmdMu.Lock("getCmd").Unlock()
	return x.cmd
}
