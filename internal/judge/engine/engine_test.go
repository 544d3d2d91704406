package engine

import (
	"context"
	"runtime"
	"strings"
	"testing"
	"time"

	pkgerrors "gavel/pkg/errors"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func TestRunCapturesOutputAndExitCode(t *testing.T) {
	requireShell(t)

	e := New()
	res, err := e.Run(context.Background(), Request{
		Cmd:       []string{"/bin/sh", "-c", "printf hello; printf oops >&2; exit 3"},
		WorkDir:   t.TempDir(),
		WallLimit: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if string(res.Stdout) != "hello" {
		t.Fatalf("expected stdout hello, got %q", res.Stdout)
	}
	if string(res.Stderr) != "oops" {
		t.Fatalf("expected stderr oops, got %q", res.Stderr)
	}
	if res.ExitCode != 3 {
		t.Fatalf("expected exit code 3, got %d", res.ExitCode)
	}
	if res.TimedOut {
		t.Fatalf("unexpected timeout")
	}
}

func TestRunFeedsStdin(t *testing.T) {
	requireShell(t)

	e := New()
	res, err := e.Run(context.Background(), Request{
		Cmd:       []string{"/bin/sh", "-c", "cat"},
		WorkDir:   t.TempDir(),
		Stdin:     strings.NewReader("1 2 3\n"),
		WallLimit: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if string(res.Stdout) != "1 2 3\n" {
		t.Fatalf("expected echoed stdin, got %q", res.Stdout)
	}
}

func TestRunKillsOnWallClockLimit(t *testing.T) {
	requireShell(t)

	e := New()
	start := time.Now()
	res, err := e.Run(context.Background(), Request{
		Cmd:       []string{"/bin/sh", "-c", "sleep 5"},
		WorkDir:   t.TempDir(),
		WallLimit: 100 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !res.TimedOut {
		t.Fatalf("expected timeout to be reported")
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Fatalf("kill took too long: %v", elapsed)
	}
	if res.ExitCode == 0 {
		t.Fatalf("timed out run must not report exit code 0")
	}
}

func TestRunStartFailure(t *testing.T) {
	e := New()
	_, err := e.Run(context.Background(), Request{
		Cmd:     []string{"/nonexistent/gavel-test-binary"},
		WorkDir: t.TempDir(),
	})
	if err == nil {
		t.Fatalf("expected start failure")
	}
	if got := pkgerrors.GetCode(err); got != pkgerrors.ProcessStartFailed {
		t.Fatalf("expected ProcessStartFailed, got %v", got)
	}
}

func TestRunValidatesRequest(t *testing.T) {
	e := New()
	_, err := e.Run(context.Background(), Request{WorkDir: t.TempDir()})
	if err == nil {
		t.Fatalf("expected error for empty command")
	}
	if got := pkgerrors.GetCode(err); got != pkgerrors.ValidationFailed {
		t.Fatalf("expected ValidationFailed, got %v", got)
	}
}

func TestRunCanceledContext(t *testing.T) {
	requireShell(t)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	e := New()
	_, err := e.Run(ctx, Request{
		Cmd:     []string{"/bin/sh", "-c", "sleep 5"},
		WorkDir: t.TempDir(),
	})
	if err == nil {
		t.Fatalf("expected cancellation error")
	}
	if got := pkgerrors.GetCode(err); got != pkgerrors.Canceled {
		t.Fatalf("expected Canceled, got %v", got)
	}
}
