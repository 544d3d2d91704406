package result

// Aggregate folds per-case outcomes into an ordered report. The overall
// verdict is AC only when every entry passed; otherwise it is the verdict of
// the first non-passing entry in case order, so reruns over the same data
// produce identical reports. An empty slice yields VerdictSkip, never a pass.
func Aggregate(runID string, cases []CaseResult, compile *CompileFailure) Report {
	report := Report{
		RunID:   runID,
		Overall: VerdictAC,
		Cases:   cases,
		Compile: compile,
	}

	if len(cases) == 0 {
		report.Overall = VerdictSkip
		return report
	}

	for _, c := range cases {
		report.TotalTimeMs += c.TimeMs
		switch {
		case c.Verdict == VerdictSkip:
			report.Skipped++
		case c.Verdict.Accepted():
			report.Passed++
		default:
			report.Failed++
		}
		if report.Overall == VerdictAC && !c.Verdict.Accepted() {
			report.Overall = c.Verdict
		}
	}

	return report
}
