// Package engine runs judge child processes under a wall-clock limit.
package engine

import (
	"context"
	"io"
	"time"

	"gavel/internal/judge/result"
)

// Request describes one child process to run.
type Request struct {
	Cmd       []string
	WorkDir   string
	Env       []string      // KEY=VALUE entries appended to the parent environment
	Stdin     io.Reader     // nil runs with empty stdin
	WallLimit time.Duration // zero means unlimited
}

// Engine executes a Request as exactly one child process. A wall-clock
// overrun terminates the whole process group and is reported through
// Execution.TimedOut, not as an error.
type Engine interface {
	Run(ctx context.Context, req Request) (result.Execution, error)
}

// New creates the default process engine.
func New() Engine {
	return &processEngine{}
}
