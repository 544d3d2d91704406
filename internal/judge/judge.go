// Package judge wires discovery, build, execution and comparison into runs.
package judge

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gavel/internal/judge/build"
	"gavel/internal/judge/compare"
	"gavel/internal/judge/engine"
	"gavel/internal/judge/result"
	"gavel/internal/judge/testcase"
	appErr "gavel/pkg/errors"
	"gavel/pkg/utils/contextkey"
	"gavel/pkg/utils/logger"
)

// IO modes for judged processes.
const (
	IOModeStdio  = "stdio"
	IOModeFileIO = "fileio"
)

const defaultTimeLimit = 5 * time.Second

// CaseSource yields the ordered test cases of one run.
type CaseSource interface {
	Discover(ctx context.Context) ([]testcase.Case, []testcase.Skipped, error)
}

// AdapterFactory builds a language adapter rooted at dir. Each run gets a
// fresh build directory so reruns never reuse stale binaries.
type AdapterFactory func(dir string) (build.Adapter, error)

// Config wires a Judge.
type Config struct {
	Cases    CaseSource
	Adapter  AdapterFactory
	Strategy compare.Strategy
	Engine   engine.Engine

	TimeLimit      time.Duration // per-case wall clock, before the language multiplier
	Parallelism    int
	WorkRoot       string
	KeepWorkspace  bool
	IOMode         string // stdio or fileio
	InputFileName  string // fileio: name the program reads from its workdir
	OutputFileName string // fileio: name the program writes in its workdir
}

// Judge executes one submission against a battery of test cases.
type Judge struct {
	cfg Config
}

// New creates a Judge from cfg, applying defaults.
func New(cfg Config) (*Judge, error) {
	if cfg.Cases == nil {
		return nil, appErr.ValidationError("cases", "required")
	}
	if cfg.Adapter == nil {
		return nil, appErr.ValidationError("adapter", "required")
	}
	if cfg.Strategy == nil {
		return nil, appErr.ValidationError("strategy", "required")
	}
	if cfg.Engine == nil {
		return nil, appErr.ValidationError("engine", "required")
	}

	switch cfg.IOMode {
	case "":
		cfg.IOMode = IOModeStdio
	case IOModeStdio:
	case IOModeFileIO:
		if cfg.InputFileName == "" {
			return nil, appErr.ValidationError("inputFileName", "required")
		}
		if cfg.OutputFileName == "" {
			return nil, appErr.ValidationError("outputFileName", "required")
		}
	default:
		return nil, appErr.Newf(appErr.InvalidParams, "unsupported io mode: %s", cfg.IOMode)
	}

	if cfg.TimeLimit <= 0 {
		cfg.TimeLimit = defaultTimeLimit
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = 1
	}
	if cfg.WorkRoot == "" {
		cfg.WorkRoot = filepath.Join(os.TempDir(), "gavel")
	}

	return &Judge{cfg: cfg}, nil
}

// Run judges sourcePath against every discovered case and returns the
// ordered report. Wrong answers and failed cases are report entries; an
// error means the run itself could not be completed.
func (j *Judge) Run(ctx context.Context, sourcePath string) (result.Report, error) {
	runID := uuid.NewString()
	ctx = context.WithValue(ctx, contextkey.RunID, runID)

	cases, skipped, err := j.cfg.Cases.Discover(ctx)
	if err != nil {
		return result.Report{}, err
	}

	runRoot := filepath.Join(j.cfg.WorkRoot, runID)
	if err := os.MkdirAll(runRoot, 0755); err != nil {
		return result.Report{}, appErr.Wrapf(err, appErr.WorkspaceError, "create run workspace failed")
	}
	if !j.cfg.KeepWorkspace {
		defer func() {
			_ = os.RemoveAll(runRoot)
		}()
	}

	adapter, err := j.cfg.Adapter(filepath.Join(runRoot, "build"))
	if err != nil {
		return result.Report{}, err
	}
	lang := adapter.Language()

	logger.Info(ctx, "judge run started",
		zap.String("source", sourcePath),
		zap.String("language", lang.ID),
		zap.Int("cases", len(cases)),
		zap.Int("skipped", len(skipped)))

	inv, compileFailure, err := adapter.Build(ctx, sourcePath)
	if err != nil {
		return result.Report{}, err
	}
	if compileFailure != nil {
		logger.Info(ctx, "compilation rejected", zap.Int("exit_code", compileFailure.ExitCode))
		entries := make([]result.CaseResult, 0, len(cases))
		for _, tc := range cases {
			entries = append(entries, result.CaseResult{TestID: tc.ID, Verdict: result.VerdictCE})
		}
		return j.finish(ctx, runID, entries, skipped, compileFailure), nil
	}

	limit := scaleLimit(j.cfg.TimeLimit, lang.TimeMultiplier)
	entries, err := j.runCases(ctx, inv, cases, runRoot, limit)
	if err != nil {
		return result.Report{}, err
	}

	return j.finish(ctx, runID, entries, skipped, nil), nil
}

// runCases executes every case through a bounded worker pool, writing each
// outcome into its discovery slot so the report order never depends on
// scheduling.
func (j *Judge) runCases(ctx context.Context, inv build.Invocation, cases []testcase.Case, runRoot string, limit time.Duration) ([]result.CaseResult, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]result.CaseResult, len(cases))
	sem := make(chan struct{}, j.cfg.Parallelism)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for i, tc := range cases {
		wg.Add(1)
		go func(idx int, tc testcase.Case) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if runCtx.Err() != nil {
				return
			}

			res, err := j.judgeCase(runCtx, inv, tc, filepath.Join(runRoot, tc.ID), limit)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
					cancel()
				}
				mu.Unlock()
				return
			}
			results[idx] = res
		}(i, tc)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

// judgeCase runs one case end to end: execute, then compare unless the
// process already failed on its own.
func (j *Judge) judgeCase(ctx context.Context, inv build.Invocation, tc testcase.Case, caseDir string, limit time.Duration) (result.CaseResult, error) {
	ctx = context.WithValue(ctx, contextkey.CaseID, tc.ID)

	if err := os.MkdirAll(caseDir, 0755); err != nil {
		return result.CaseResult{}, appErr.Wrapf(err, appErr.WorkspaceError, "create case workdir failed")
	}

	req := engine.Request{
		Cmd:       inv.Cmd,
		Env:       inv.Env,
		WorkDir:   caseDir,
		WallLimit: limit,
	}

	switch j.cfg.IOMode {
	case IOModeStdio:
		in, err := os.Open(tc.InputPath)
		if err != nil {
			return result.CaseResult{}, appErr.Wrapf(err, appErr.WorkspaceError, "open input %s: %v", tc.InputPath, err)
		}
		defer in.Close()
		req.Stdin = in
	case IOModeFileIO:
		if err := copyFile(tc.InputPath, filepath.Join(caseDir, j.cfg.InputFileName)); err != nil {
			return result.CaseResult{}, err
		}
	}

	res, err := j.cfg.Engine.Run(ctx, req)
	if err != nil {
		return result.CaseResult{}, err
	}

	entry := result.CaseResult{
		TestID:   tc.ID,
		TimeMs:   res.Duration.Milliseconds(),
		ExitCode: res.ExitCode,
		TimedOut: res.TimedOut,
	}

	// A timed out or crashed process is judged without looking at its
	// output; partial output proves nothing.
	if res.TimedOut {
		entry.Verdict = result.VerdictTLE
		logger.Debug(ctx, "case timed out", zap.Int64("time_ms", entry.TimeMs))
		return entry, nil
	}
	if res.ExitCode != 0 {
		entry.Verdict = result.VerdictRE
		entry.Detail = runtimeDetail(res)
		return entry, nil
	}

	actual := res.Stdout
	if j.cfg.IOMode == IOModeFileIO {
		// A program that produced no output file is judged on empty output.
		actual, _ = os.ReadFile(filepath.Join(caseDir, j.cfg.OutputFileName))
	}

	outcome, err := j.cfg.Strategy.Compare(ctx, compare.Input{
		InputPath:  tc.InputPath,
		AnswerPath: tc.AnswerPath,
		Actual:     actual,
		WorkDir:    caseDir,
	})
	if err != nil {
		return result.CaseResult{}, err
	}

	entry.Verdict = outcome.Verdict
	entry.MismatchLine = outcome.MismatchLine
	entry.Detail = outcome.Detail
	return entry, nil
}

// finish merges judged and skipped entries back into directory order and
// aggregates them.
func (j *Judge) finish(ctx context.Context, runID string, entries []result.CaseResult, skipped []testcase.Skipped, compile *result.CompileFailure) result.Report {
	for _, s := range skipped {
		entries = append(entries, result.CaseResult{
			TestID:  s.ID,
			Verdict: result.VerdictSkip,
			Detail:  s.Reason,
		})
	}
	sort.Slice(entries, func(a, b int) bool { return entries[a].TestID < entries[b].TestID })

	report := result.Aggregate(runID, entries, compile)
	logger.Info(ctx, "judge run finished",
		zap.String("overall", string(report.Overall)),
		zap.Int("passed", report.Passed),
		zap.Int("failed", report.Failed),
		zap.Int("skipped", report.Skipped),
		zap.Int64("total_time_ms", report.TotalTimeMs))
	return report
}

func runtimeDetail(res result.Execution) string {
	detail := fmt.Sprintf("exit code %d", res.ExitCode)
	if stderr := firstLine(res.Stderr); stderr != "" {
		detail += ": " + stderr
	}
	return detail
}

func firstLine(b []byte) string {
	for i, c := range b {
		if c == '\n' {
			b = b[:i]
			break
		}
	}
	s := string(b)
	if len(s) > 120 {
		s = s[:120] + "..."
	}
	return s
}

func scaleLimit(limit time.Duration, multiplier float64) time.Duration {
	if limit <= 0 {
		return 0
	}
	if multiplier <= 0 {
		return limit
	}
	return time.Duration(math.Ceil(float64(limit) * multiplier))
}

func copyFile(src, dst string) error {
	content, err := os.ReadFile(src)
	if err != nil {
		return appErr.Wrapf(err, appErr.WorkspaceError, "read %s: %v", src, err)
	}
	if err := os.WriteFile(dst, content, 0644); err != nil {
		return appErr.Wrapf(err, appErr.WorkspaceError, "write %s: %v", dst, err)
	}
	return nil
}
