package result

import "time"

// Execution captures raw child process data for one run.
type Execution struct {
	ExitCode int
	Duration time.Duration
	TimedOut bool
	Stdout   []byte
	Stderr   []byte
}

// CompileFailure contains compilation diagnostics for a rejected submission.
type CompileFailure struct {
	ExitCode int    `json:"exit_code"`
	Output   string `json:"output"`
}

// CaseResult contains per-testcase judging outcomes.
type CaseResult struct {
	TestID       string  `json:"test_id"`
	Verdict      Verdict `json:"verdict"`
	TimeMs       int64   `json:"time_ms"`
	ExitCode     int     `json:"exit_code"`
	TimedOut     bool    `json:"timed_out,omitempty"`
	MismatchLine int     `json:"mismatch_line,omitempty"`
	Detail       string  `json:"detail,omitempty"`
}

// Report is the aggregated outcome of one judge run. Cases keep discovery
// order regardless of how execution was scheduled.
type Report struct {
	RunID       string          `json:"run_id"`
	Overall     Verdict         `json:"overall"`
	Cases       []CaseResult    `json:"cases"`
	Passed      int             `json:"passed"`
	Failed      int             `json:"failed"`
	Skipped     int             `json:"skipped"`
	TotalTimeMs int64           `json:"total_time_ms"`
	Compile     *CompileFailure `json:"compile,omitempty"`
}
