package repl

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gavel/internal/judge/result"
)

type recordedRun struct {
	settings Settings
	source   string
}

func newTestSession(t *testing.T, rep result.Report) (*Session, *bytes.Buffer, *[]recordedRun) {
	t.Helper()
	var runs []recordedRun
	run := func(ctx context.Context, settings Settings, source string) (result.Report, error) {
		runs = append(runs, recordedRun{settings: settings, source: source})
		return rep, nil
	}
	importPack := func(ctx context.Context, settings Settings, archive string) error {
		return nil
	}
	s := New(run, importPack, Settings{TestRoot: "./testcases", TimeLimit: 5 * time.Second, Parallelism: 1}, false)
	var buf bytes.Buffer
	s.outputWriter = bufio.NewWriter(&buf)
	return s, &buf, &runs
}

func TestHandleSetUpdatesSettings(t *testing.T) {
	s, buf, _ := newTestSession(t, result.Report{})

	s.handleSet("tests ./other")
	s.handleSet("lang c++")
	s.handleSet("strategy checker")
	s.handleSet("limit 2s")
	s.handleSet("parallel 4")

	if s.settings.TestRoot != "./other" {
		t.Fatalf("test root not updated: %+v", s.settings)
	}
	if s.settings.Language != "cpp" {
		t.Fatalf("alias must resolve to canonical id, got %q", s.settings.Language)
	}
	if s.settings.Strategy != "checker" {
		t.Fatalf("strategy not updated: %+v", s.settings)
	}
	if s.settings.TimeLimit != 2*time.Second {
		t.Fatalf("time limit not updated: %+v", s.settings)
	}
	if s.settings.Parallelism != 4 {
		t.Fatalf("parallelism not updated: %+v", s.settings)
	}
	if !strings.Contains(buf.String(), "language set to cpp") {
		t.Fatalf("missing confirmation output:\n%s", buf.String())
	}
}

func TestHandleSetRejectsBadValues(t *testing.T) {
	s, buf, _ := newTestSession(t, result.Report{})

	s.handleSet("lang fortran")
	s.handleSet("limit soon")
	s.handleSet("parallel zero")

	out := buf.String()
	if !strings.Contains(out, `unknown language "fortran"`) {
		t.Fatalf("missing language rejection:\n%s", out)
	}
	if !strings.Contains(out, "invalid duration") {
		t.Fatalf("missing duration rejection:\n%s", out)
	}
	if !strings.Contains(out, "invalid worker count") {
		t.Fatalf("missing worker rejection:\n%s", out)
	}
	if s.settings.Language != "" || s.settings.TimeLimit != 5*time.Second || s.settings.Parallelism != 1 {
		t.Fatalf("bad values must not stick: %+v", s.settings)
	}
}

func TestSetCheckerSwitchesStrategy(t *testing.T) {
	s, _, _ := newTestSession(t, result.Report{})

	s.handleSet(`checker "./check --strict"`)

	if s.settings.CheckerCommand != "./check --strict" {
		t.Fatalf("checker command mangled: %q", s.settings.CheckerCommand)
	}
	if s.settings.Strategy != "checker" {
		t.Fatalf("setting a checker must switch the strategy, got %q", s.settings.Strategy)
	}
}

func TestHandleSystemCommandExit(t *testing.T) {
	s, buf, _ := newTestSession(t, result.Report{})

	handled, quit := s.handleSystemCommand("exit")
	if !handled || !quit {
		t.Fatalf("exit must end the session")
	}
	if !strings.Contains(buf.String(), "bye") {
		t.Fatalf("missing farewell:\n%s", buf.String())
	}

	handled, quit = s.handleSystemCommand("help")
	if !handled || quit {
		t.Fatalf("help must not end the session")
	}
}

func TestHandleCommandJudge(t *testing.T) {
	rep := result.Aggregate("run-1", []result.CaseResult{
		{TestID: "a", Verdict: result.VerdictAC, TimeMs: 3},
	}, nil)
	s, buf, runs := newTestSession(t, rep)

	if err := s.handleCommand(context.Background(), nil, "judge ./main.py"); err != nil {
		t.Fatalf("judge command failed: %v", err)
	}
	if len(*runs) != 1 || (*runs)[0].source != "./main.py" {
		t.Fatalf("run not invoked as expected: %+v", *runs)
	}
	if (*runs)[0].settings.TestRoot != "./testcases" {
		t.Fatalf("settings not passed through: %+v", (*runs)[0].settings)
	}
	if !strings.Contains(buf.String(), "Test case #1 (a) passed") {
		t.Fatalf("report not rendered:\n%s", buf.String())
	}
}

func TestHandleCommandBarePathJudges(t *testing.T) {
	source := filepath.Join(t.TempDir(), "main.py")
	if err := os.WriteFile(source, []byte("print(1)\n"), 0644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	s, _, runs := newTestSession(t, result.Report{Overall: result.VerdictAC})

	if err := s.handleCommand(context.Background(), nil, source); err != nil {
		t.Fatalf("bare path failed: %v", err)
	}
	if len(*runs) != 1 || (*runs)[0].source != source {
		t.Fatalf("bare path not judged: %+v", *runs)
	}
}

func TestHandleCommandUnknown(t *testing.T) {
	s, _, runs := newTestSession(t, result.Report{})

	err := s.handleCommand(context.Background(), nil, "frobnicate ./x")
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
	if len(*runs) != 0 {
		t.Fatalf("nothing should have run")
	}
}

func TestHandleShowConfig(t *testing.T) {
	s, buf, _ := newTestSession(t, result.Report{})
	s.settings.CheckerCommand = "./check"

	s.handleShow("config")

	out := buf.String()
	for _, want := range []string{"tests:    ./testcases", "checker:  ./check", "parallel: 1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}
