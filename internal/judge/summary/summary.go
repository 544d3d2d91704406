// Package summary renders a finished judge report for humans and for
// machines. The text form mirrors classic terminal judges, one colored
// line per test case; the JSON form is the report marshaled verbatim.
package summary

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gavel/internal/judge/result"
	appErr "gavel/pkg/errors"
)

const (
	ansiRed   = "\033[91m"
	ansiGreen = "\033[92m"
	ansiReset = "\033[00m"
)

// TextOptions controls the human readable rendering.
type TextOptions struct {
	// Color enables ANSI escapes. Leave it off when writing to a file.
	Color bool
}

// WriteText writes one line per test case plus a closing summary line.
func WriteText(w io.Writer, rep result.Report, opts TextOptions) error {
	bw := bufio.NewWriter(w)

	if rep.Compile != nil {
		writeLine(bw, opts.Color, ansiRed, fmt.Sprintf("Compilation failed (exit code %d)", rep.Compile.ExitCode))
		if out := strings.TrimSpace(rep.Compile.Output); out != "" {
			for _, line := range strings.Split(out, "\n") {
				_, _ = fmt.Fprintf(bw, "    %s\n", line)
			}
		}
	}

	_, _ = bw.WriteString("\n")
	for i, c := range rep.Cases {
		switch {
		case c.Verdict.Accepted():
			writeLine(bw, opts.Color, ansiGreen, fmt.Sprintf("Test case #%d (%s) passed, %dms", i+1, c.TestID, c.TimeMs))
		case c.Verdict == result.VerdictSkip:
			writeLine(bw, opts.Color, ansiRed, fmt.Sprintf(" x Test case #%d (%s) skipped: %s", i+1, c.TestID, c.Detail))
		default:
			writeLine(bw, opts.Color, ansiRed, fmt.Sprintf(" x Test case #%d (%s) failed: %s", i+1, c.TestID, c.Verdict.Label()))
			if c.Detail != "" {
				_, _ = fmt.Fprintf(bw, "      %s\n", c.Detail)
			}
		}
	}
	_, _ = bw.WriteString("\n")

	line := fmt.Sprintf("%s: %d passed, %d failed, %d skipped, %dms total",
		rep.Overall.Label(), rep.Passed, rep.Failed, rep.Skipped, rep.TotalTimeMs)
	if rep.Overall.Accepted() {
		writeLine(bw, opts.Color, ansiGreen, line)
	} else {
		writeLine(bw, opts.Color, ansiRed, line)
	}

	if err := bw.Flush(); err != nil {
		return appErr.Wrap(err, appErr.SystemError)
	}
	return nil
}

// WriteJSON marshals the report. Pretty output matches two space
// indentation so it can be diffed against saved runs.
func WriteJSON(w io.Writer, rep result.Report, pretty bool) error {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(rep, "", "  ")
	} else {
		data, err = json.Marshal(rep)
	}
	if err != nil {
		return appErr.Wrap(err, appErr.SystemError)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return appErr.Wrap(err, appErr.SystemError)
	}
	return nil
}

func writeLine(w *bufio.Writer, color bool, code, text string) {
	if color {
		_, _ = fmt.Fprintf(w, "%s%s%s\n", code, text, ansiReset)
		return
	}
	_, _ = fmt.Fprintln(w, text)
}
