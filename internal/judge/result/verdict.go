// Package result defines judge outcomes and report aggregation.
package result

// Verdict represents the final outcome of judging one test case.
type Verdict string

const (
	VerdictAC   Verdict = "AC"
	VerdictWA   Verdict = "WA"
	VerdictRE   Verdict = "RE"
	VerdictCE   Verdict = "CE"
	VerdictTLE  Verdict = "TLE"
	VerdictCKE  Verdict = "CKE"
	VerdictSkip Verdict = "SKIP"
)

// verdictLabels maps verdicts to their human-readable labels.
var verdictLabels = map[Verdict]string{
	VerdictAC:   "Accepted",
	VerdictWA:   "Wrong Answer",
	VerdictRE:   "Runtime Error",
	VerdictCE:   "Compile Error",
	VerdictTLE:  "Time Limit Exceeded",
	VerdictCKE:  "Checker Error",
	VerdictSkip: "Skipped",
}

// Label returns the human-readable form of the verdict.
func (v Verdict) Label() string {
	if label, ok := verdictLabels[v]; ok {
		return label
	}
	return "Unknown"
}

// Accepted reports whether the verdict is a clean pass.
func (v Verdict) Accepted() bool {
	return v == VerdictAC
}
