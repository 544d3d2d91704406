package compare

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/shlex"
	"go.uber.org/zap"

	"gavel/internal/judge/engine"
	"gavel/internal/judge/result"
	appErr "gavel/pkg/errors"
	"gavel/pkg/utils/logger"
)

const (
	defaultCheckerLimit = 10 * time.Second
	actualOutputName    = "output.txt"
)

// CheckerConfig parameterizes an external checker.
type CheckerConfig struct {
	Engine  engine.Engine
	Command string // checker command line, tokenized with shlex
	Limit   time.Duration
}

// CheckerComparator delegates the decision to an external program invoked as
//
//	checker [args...] <inputPath> <actualPath> <answerPath>
//
// Exit code 0 accepts, 1 rejects, anything else (or a crash or timeout) is a
// checker infrastructure failure, reported as CKE and never as WA.
type CheckerComparator struct {
	eng   engine.Engine
	cmd   []string
	limit time.Duration
}

// NewChecker creates a checker-backed comparator.
func NewChecker(cfg CheckerConfig) (*CheckerComparator, error) {
	if cfg.Engine == nil {
		return nil, appErr.ValidationError("engine", "required")
	}
	if strings.TrimSpace(cfg.Command) == "" {
		return nil, appErr.New(appErr.CheckerNotFound).WithMessage("checker command is required")
	}
	fields, err := shlex.Split(cfg.Command)
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.InvalidParams, "parse checker command failed")
	}
	if len(fields) == 0 {
		return nil, appErr.New(appErr.CheckerNotFound).WithMessage("checker command is empty")
	}
	if cfg.Limit <= 0 {
		cfg.Limit = defaultCheckerLimit
	}
	return &CheckerComparator{eng: cfg.Engine, cmd: fields, limit: cfg.Limit}, nil
}

func (c *CheckerComparator) Name() string {
	return StrategyChecker
}

func (c *CheckerComparator) Compare(ctx context.Context, in Input) (Outcome, error) {
	actualPath := filepath.Join(in.WorkDir, actualOutputName)
	if err := os.WriteFile(actualPath, in.Actual, 0644); err != nil {
		return Outcome{}, appErr.Wrapf(err, appErr.WorkspaceError, "write actual output failed: %v", err)
	}

	argv := append(append([]string{}, c.cmd...), in.InputPath, actualPath, in.AnswerPath)
	res, err := c.eng.Run(ctx, engine.Request{
		Cmd:       argv,
		WorkDir:   in.WorkDir,
		WallLimit: c.limit,
	})
	if err != nil {
		if appErr.Is(err, appErr.ProcessStartFailed) {
			return Outcome{
				Verdict: result.VerdictCKE,
				Detail:  "checker failed to start: " + err.Error(),
			}, nil
		}
		return Outcome{}, err
	}

	if res.TimedOut {
		return Outcome{Verdict: result.VerdictCKE, Detail: "checker timed out"}, nil
	}

	note := checkerNote(res)
	switch res.ExitCode {
	case 0:
		return Outcome{Verdict: result.VerdictAC, Detail: note}, nil
	case 1:
		return Outcome{Verdict: result.VerdictWA, Detail: note}, nil
	default:
		logger.Warn(ctx, "checker returned unexpected exit code",
			zap.Int("exit_code", res.ExitCode),
			zap.String("checker", c.cmd[0]))
		detail := fmt.Sprintf("checker exited with code %d", res.ExitCode)
		if note != "" {
			detail += ": " + note
		}
		return Outcome{Verdict: result.VerdictCKE, Detail: detail}, nil
	}
}

// checkerNote extracts the checker's one-line diagnostic, preferring stderr.
func checkerNote(res result.Execution) string {
	out := strings.TrimSpace(string(res.Stderr))
	if out == "" {
		out = strings.TrimSpace(string(res.Stdout))
	}
	if idx := strings.IndexByte(out, '\n'); idx >= 0 {
		out = out[:idx]
	}
	return snippet(out, 120)
}
