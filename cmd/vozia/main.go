package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"
)

const (
	exitOK        = 0
	exitError     = 1
	exitInterrupt = 130
)

// interruptGrace bounds how long a cancelled run may spend stopping the
// engine subprocess and removing temp files before the process exits.
const interruptGrace = 3 * time.Second

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	handled := make(chan struct{})

	go func() {
		defer close(handled)
		onInterrupt(sigCh, done, cancel, interruptGrace, os.Stderr, os.Exit)
	}()

	code := run(ctx, executableDir(), os.Args[1:], os.Stdout, os.Stderr)

	close(done)
	// After a signal the handler owns the exit code.
	<-handled
	cancel()
	os.Exit(code)
}

// onInterrupt waits for the first signal, cancels the run and gives it up to
// grace to return (done closed) before calling exit with 130. It returns
// without exiting when done closes before any signal arrives.
func onInterrupt(sigCh <-chan os.Signal, done <-chan struct{}, cancel context.CancelFunc, grace time.Duration, stderr io.Writer, exit func(int)) {
	select {
	case <-done:
		return
	case <-sigCh:
	}

	cancel()
	_, _ = fmt.Fprintln(stderr, "\ninterrupted by user")

	timer := time.NewTimer(grace)
	defer timer.Stop()

	select {
	case <-done:
	case <-timer.C:
	}

	exit(exitInterrupt)
}

// run executes the root command and maps its result to a process exit code.
// It is the only place errors are printed.
func run(ctx context.Context, baseDir string, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCmd(baseDir)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "error: %v\n", err)
	}

	return exitCode(err)
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, context.Canceled):
		return exitInterrupt
	default:
		return exitError
	}
}

// executableDir is the directory holding the running binary, with symlinks
// resolved. The default voice directory lives next to it.
func executableDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}

	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}

	return filepath.Dir(exe)
}
