package compare

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gavel/internal/judge/result"
	appErr "gavel/pkg/errors"
)

// LineComparator implements right-trimmed line equality. Each line loses
// trailing spaces, tabs and carriage returns; trailing empty lines are
// ignored on both sides, so a missing or extra final newline never fails a
// case. Interior blank lines stay significant.
type LineComparator struct{}

// NewLines creates the default line comparator.
func NewLines() *LineComparator {
	return &LineComparator{}
}

func (c *LineComparator) Name() string {
	return StrategyLines
}

func (c *LineComparator) Compare(ctx context.Context, in Input) (Outcome, error) {
	expected, err := os.ReadFile(in.AnswerPath)
	if err != nil {
		return Outcome{}, appErr.Wrapf(err, appErr.WorkspaceError, "read answer %s: %v", in.AnswerPath, err)
	}

	want := normalizeLines(expected)
	got := normalizeLines(in.Actual)

	limit := len(want)
	if len(got) < limit {
		limit = len(got)
	}
	for i := 0; i < limit; i++ {
		if want[i] != got[i] {
			return Outcome{
				Verdict:      result.VerdictWA,
				MismatchLine: i + 1,
				Detail:       fmt.Sprintf("line %d: expected %q, got %q", i+1, snippet(want[i], 80), snippet(got[i], 80)),
			}, nil
		}
	}
	if len(want) != len(got) {
		return Outcome{
			Verdict:      result.VerdictWA,
			MismatchLine: limit + 1,
			Detail:       fmt.Sprintf("expected %d lines, got %d", len(want), len(got)),
		}, nil
	}

	return Outcome{Verdict: result.VerdictAC}, nil
}

// normalizeLines splits output into comparison units: lines right-trimmed of
// spaces, tabs and CR, with all trailing empty lines dropped.
func normalizeLines(raw []byte) []string {
	lines := strings.Split(string(raw), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	end := len(lines)
	for end > 0 && lines[end-1] == "" {
		end--
	}
	return lines[:end]
}
