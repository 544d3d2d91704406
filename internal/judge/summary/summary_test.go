package summary

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gavel/internal/judge/result"
)

func sampleReport() result.Report {
	return result.Aggregate("run-1", []result.CaseResult{
		{TestID: "a", Verdict: result.VerdictAC, TimeMs: 12},
		{TestID: "b", Verdict: result.VerdictWA, TimeMs: 8, MismatchLine: 3, Detail: `line 3: expected "10", got "11"`},
	}, nil)
}

func TestWriteTextColored(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, sampleReport(), TextOptions{Color: true}); err != nil {
		t.Fatalf("write text: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "\033[92mTest case #1 (a) passed, 12ms\033[00m") {
		t.Fatalf("missing green pass line:\n%s", out)
	}
	if !strings.Contains(out, "\033[91m x Test case #2 (b) failed: Wrong Answer\033[00m") {
		t.Fatalf("missing red failure line:\n%s", out)
	}
	if !strings.Contains(out, `      line 3: expected "10", got "11"`) {
		t.Fatalf("mismatch detail dropped:\n%s", out)
	}
	if !strings.Contains(out, "Wrong Answer: 1 passed, 1 failed, 0 skipped, 20ms total") {
		t.Fatalf("missing summary line:\n%s", out)
	}
}

func TestWriteTextPlain(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, sampleReport(), TextOptions{}); err != nil {
		t.Fatalf("write text: %v", err)
	}
	if strings.Contains(buf.String(), "\033[") {
		t.Fatalf("plain output must not carry escapes:\n%q", buf.String())
	}
	if !strings.Contains(buf.String(), "Test case #1 (a) passed, 12ms") {
		t.Fatalf("pass line missing:\n%s", buf.String())
	}
}

func TestWriteTextCompileFailure(t *testing.T) {
	rep := result.Aggregate("run-2", []result.CaseResult{
		{TestID: "a", Verdict: result.VerdictCE},
	}, &result.CompileFailure{ExitCode: 1, Output: "main.cpp:3: error: expected ';'"})

	var buf bytes.Buffer
	if err := WriteText(&buf, rep, TextOptions{}); err != nil {
		t.Fatalf("write text: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Compilation failed (exit code 1)") {
		t.Fatalf("missing compile banner:\n%s", out)
	}
	if !strings.Contains(out, "    main.cpp:3: error: expected ';'") {
		t.Fatalf("compiler output not indented:\n%s", out)
	}
	if !strings.Contains(out, " x Test case #1 (a) failed: Compile Error") {
		t.Fatalf("cases must still be listed:\n%s", out)
	}
}

func TestWriteTextSkipped(t *testing.T) {
	rep := result.Aggregate("run-3", []result.CaseResult{
		{TestID: "broken", Verdict: result.VerdictSkip, Detail: "no answer file"},
	}, nil)

	var buf bytes.Buffer
	if err := WriteText(&buf, rep, TextOptions{}); err != nil {
		t.Fatalf("write text: %v", err)
	}
	if !strings.Contains(buf.String(), " x Test case #1 (broken) skipped: no answer file") {
		t.Fatalf("skip line missing:\n%s", buf.String())
	}
}

func TestWriteJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleReport(), false); err != nil {
		t.Fatalf("write json: %v", err)
	}
	if !bytes.HasSuffix(buf.Bytes(), []byte("\n")) {
		t.Fatalf("json output must end with a newline")
	}

	var rep result.Report
	if err := json.Unmarshal(buf.Bytes(), &rep); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rep.Overall != result.VerdictWA || rep.RunID != "run-1" {
		t.Fatalf("round trip mangled report: %+v", rep)
	}
	if !strings.Contains(buf.String(), `"verdict":"WA"`) {
		t.Fatalf("verdicts must serialize as short codes:\n%s", buf.String())
	}
}

func TestWriteJSONPretty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleReport(), true); err != nil {
		t.Fatalf("write json: %v", err)
	}
	if !strings.Contains(buf.String(), "\n  \"overall\"") {
		t.Fatalf("pretty output not indented:\n%s", buf.String())
	}
}
