// Package compare decides whether produced output answers a test case.
package compare

import (
	"context"
	"time"

	"gavel/internal/judge/engine"
	"gavel/internal/judge/result"
	appErr "gavel/pkg/errors"
)

// Strategy names selectable in configuration.
const (
	StrategyLines   = "lines"
	StrategyChecker = "checker"
)

// Input carries the artifacts one comparison works on. Actual holds the
// submission's raw output; WorkDir is the case's scratch directory.
type Input struct {
	InputPath  string
	AnswerPath string
	Actual     []byte
	WorkDir    string
}

// Outcome is the comparison decision for one test case.
type Outcome struct {
	Verdict      result.Verdict // AC, WA or CKE
	MismatchLine int            // 1-based first differing line, lines strategy only
	Detail       string
}

// Strategy judges actual output against the case's expected data. A wrong
// answer is an Outcome, not an error; errors mean the comparison itself
// could not run.
type Strategy interface {
	Name() string
	Compare(ctx context.Context, in Input) (Outcome, error)
}

// Config selects and parameterizes the comparison strategy for a run.
type Config struct {
	Strategy       string
	CheckerCommand string
	CheckerLimit   time.Duration
	Engine         engine.Engine
}

// New builds the strategy named in cfg. The choice is made once per run;
// cases never pick their own strategy.
func New(cfg Config) (Strategy, error) {
	switch cfg.Strategy {
	case "", StrategyLines:
		return NewLines(), nil
	case StrategyChecker:
		return NewChecker(CheckerConfig{
			Engine:  cfg.Engine,
			Command: cfg.CheckerCommand,
			Limit:   cfg.CheckerLimit,
		})
	default:
		return nil, appErr.Newf(appErr.UnknownStrategy, "unknown comparison strategy: %s", cfg.Strategy)
	}
}

// snippet trims a diagnostic string for report display.
func snippet(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
