package engine

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"gavel/internal/judge/result"
	appErr "gavel/pkg/errors"
	"gavel/pkg/utils/logger"
)

type processEngine struct{}

func (e *processEngine) Run(ctx context.Context, req Request) (result.Execution, error) {
	if err := validateRequest(req); err != nil {
		return result.Execution{}, err
	}

	cmd := exec.CommandContext(ctx, req.Cmd[0], req.Cmd[1:]...)
	cmd.Dir = req.WorkDir
	if len(req.Env) > 0 {
		cmd.Env = append(os.Environ(), req.Env...)
	}
	cmd.Stdin = req.Stdin

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.SysProcAttr = sysProcAttr()

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return result.Execution{}, appErr.Wrapf(err, appErr.ProcessStartFailed, "start %s: %v", req.Cmd[0], err)
	}

	var timedOut atomic.Bool
	done := make(chan struct{})
	go func() {
		var wallTimer <-chan time.Time
		if req.WallLimit > 0 {
			wallTimer = time.After(req.WallLimit)
		}
		select {
		case <-ctx.Done():
			killProcessGroup(cmd.Process.Pid)
		case <-wallTimer:
			timedOut.Store(true)
			killProcessGroup(cmd.Process.Pid)
		case <-done:
		}
	}()

	waitErr := cmd.Wait()
	close(done)

	res := result.Execution{
		ExitCode: exitCodeFromErr(waitErr, cmd.ProcessState),
		Duration: time.Since(start),
		TimedOut: timedOut.Load(),
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
	}

	if res.TimedOut && res.ExitCode == 0 {
		res.ExitCode = -1
	}

	if ctx.Err() != nil && !res.TimedOut {
		return res, appErr.Wrap(ctx.Err(), appErr.Canceled)
	}

	logger.Debug(ctx, "process finished",
		zap.String("cmd", req.Cmd[0]),
		zap.Int("exit_code", res.ExitCode),
		zap.Duration("duration", res.Duration),
		zap.Bool("timed_out", res.TimedOut))

	return res, nil
}

func exitCodeFromErr(err error, state *os.ProcessState) int {
	if state != nil {
		return state.ExitCode()
	}
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func validateRequest(req Request) error {
	if len(req.Cmd) == 0 {
		return appErr.ValidationError("cmd", "required")
	}
	if req.WorkDir == "" {
		return appErr.ValidationError("workDir", "required")
	}
	return nil
}
