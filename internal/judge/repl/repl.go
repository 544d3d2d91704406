package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gavel/internal/judge/build"
	"gavel/internal/judge/compare"
	"gavel/internal/judge/result"
	"gavel/internal/judge/summary"

	"github.com/chzyer/readline"
	"github.com/google/shlex"
)

// Settings is the judge configuration a session can edit between runs.
type Settings struct {
	TestRoot       string
	Language       string
	Strategy       string
	CheckerCommand string
	TimeLimit      time.Duration
	Parallelism    int
	IOMode         string
}

// RunFunc judges one source file under the given settings.
type RunFunc func(ctx context.Context, settings Settings, sourcePath string) (result.Report, error)

// ImportFunc extracts a test case pack into the configured test root.
type ImportFunc func(ctx context.Context, settings Settings, archivePath string) error

// Session holds REPL state.
type Session struct {
	run          RunFunc
	importPack   ImportFunc
	settings     Settings
	prettyJSON   bool
	color        bool
	outputWriter *bufio.Writer
}

func New(run RunFunc, importPack ImportFunc, settings Settings, color bool) *Session {
	return &Session{
		run:          run,
		importPack:   importPack,
		settings:     settings,
		color:        color,
		outputWriter: bufio.NewWriter(os.Stdout),
	}
}

func (s *Session) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "gavel> ",
		HistoryFile:     filepath.Join(os.TempDir(), ".gavel_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    completer(),
	})
	if err != nil {
		return fmt.Errorf("start interactive session failed: %w", err)
	}
	defer func() { _ = rl.Close() }()

	s.printLine("gavel interactive mode, type help for commands")
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				s.printLine("bye")
				return nil
			}
			continue
		}
		if err == io.EOF {
			s.printLine("bye")
			return nil
		}
		if err != nil {
			s.printLine("read input failed: %v", err)
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		handled, quit := s.handleSystemCommand(line)
		if quit {
			return nil
		}
		if handled {
			continue
		}

		if err := s.handleCommand(ctx, rl, line); err != nil {
			s.printLine("error: %v", err)
		}
	}
}

func completer() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("judge"),
		readline.PcItem("import"),
		readline.PcItem("set",
			readline.PcItem("tests"),
			readline.PcItem("lang"),
			readline.PcItem("strategy", readline.PcItem("lines"), readline.PcItem("checker")),
			readline.PcItem("checker"),
			readline.PcItem("limit"),
			readline.PcItem("parallel"),
			readline.PcItem("json", readline.PcItem("on"), readline.PcItem("off")),
		),
		readline.PcItem("show", readline.PcItem("config")),
		readline.PcItem("help"),
		readline.PcItem("exit"),
	)
}

func (s *Session) handleSystemCommand(line string) (handled, quit bool) {
	switch line {
	case "exit", "quit":
		s.printLine("bye")
		return true, true
	case "help":
		s.printHelp()
		return true, false
	}
	if strings.HasPrefix(line, "set ") {
		s.handleSet(strings.TrimSpace(strings.TrimPrefix(line, "set ")))
		return true, false
	}
	if strings.HasPrefix(line, "show ") {
		s.handleShow(strings.TrimSpace(strings.TrimPrefix(line, "show ")))
		return true, false
	}
	return false, false
}

func (s *Session) handleSet(args string) {
	parts, err := shlex.Split(args)
	if err != nil {
		s.printLine("invalid arguments: %v", err)
		return
	}
	if len(parts) == 0 {
		s.printLine("usage: set tests|lang|strategy|checker|limit|parallel|json")
		return
	}
	switch parts[0] {
	case "tests":
		if len(parts) < 2 {
			s.printLine("usage: set tests ./testcases")
			return
		}
		s.settings.TestRoot = parts[1]
		s.printLine("test root set to %s", parts[1])
	case "lang":
		if len(parts) < 2 {
			s.printLine("usage: set lang cpp|java|go|python")
			return
		}
		lang, err := build.For(parts[1])
		if err != nil {
			s.printLine("unknown language %q, supported: %s", parts[1], strings.Join(build.Supported(), ", "))
			return
		}
		s.settings.Language = lang.ID
		s.printLine("language set to %s", lang.ID)
	case "strategy":
		if len(parts) < 2 || (parts[1] != compare.StrategyLines && parts[1] != compare.StrategyChecker) {
			s.printLine("usage: set strategy lines|checker")
			return
		}
		s.settings.Strategy = parts[1]
		s.printLine("strategy set to %s", parts[1])
	case "checker":
		if len(parts) < 2 {
			s.printLine("usage: set checker \"./check --strict\"")
			return
		}
		s.settings.CheckerCommand = strings.Join(parts[1:], " ")
		s.settings.Strategy = compare.StrategyChecker
		s.printLine("checker set, strategy switched to checker")
	case "limit":
		if len(parts) < 2 {
			s.printLine("usage: set limit 5s")
			return
		}
		dur, err := time.ParseDuration(parts[1])
		if err != nil {
			s.printLine("invalid duration: %v", err)
			return
		}
		s.settings.TimeLimit = dur
		s.printLine("time limit set to %s", dur)
	case "parallel":
		if len(parts) < 2 {
			s.printLine("usage: set parallel 4")
			return
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil || n < 1 {
			s.printLine("invalid worker count: %s", parts[1])
			return
		}
		s.settings.Parallelism = n
		s.printLine("parallelism set to %d", n)
	case "json":
		if len(parts) < 2 || (parts[1] != "on" && parts[1] != "off") {
			s.printLine("usage: set json on|off")
			return
		}
		s.prettyJSON = parts[1] == "on"
		s.printLine("json output %s", parts[1])
	default:
		s.printLine("unknown set command")
	}
}

func (s *Session) handleShow(args string) {
	switch args {
	case "config":
		s.printLine("tests:    %s", s.settings.TestRoot)
		s.printLine("lang:     %s", orAuto(s.settings.Language))
		s.printLine("strategy: %s", orDefault(s.settings.Strategy, compare.StrategyLines))
		if s.settings.CheckerCommand != "" {
			s.printLine("checker:  %s", s.settings.CheckerCommand)
		}
		s.printLine("limit:    %s", s.settings.TimeLimit)
		s.printLine("parallel: %d", s.settings.Parallelism)
	default:
		s.printLine("usage: show config")
	}
}

func (s *Session) handleCommand(ctx context.Context, rl *readline.Instance, line string) error {
	tokens, err := shlex.Split(line)
	if err != nil {
		return fmt.Errorf("parse command failed: %w", err)
	}
	if len(tokens) == 0 {
		return nil
	}

	switch tokens[0] {
	case "judge":
		source := ""
		if len(tokens) > 1 {
			source = tokens[1]
		}
		return s.judge(ctx, rl, source)
	case "import":
		if len(tokens) < 2 {
			return fmt.Errorf("usage: import ./cases.tar.zst")
		}
		if err := s.importPack(ctx, s.settings, tokens[1]); err != nil {
			return err
		}
		s.printLine("pack imported into %s", s.settings.TestRoot)
		return nil
	}

	// A bare path is a submission, matching the judges this tool grew out
	// of where the filename was the whole conversation.
	if _, statErr := os.Stat(tokens[0]); statErr == nil {
		return s.judge(ctx, rl, tokens[0])
	}
	return fmt.Errorf("unknown command: %s", tokens[0])
}

func (s *Session) judge(ctx context.Context, rl *readline.Instance, source string) error {
	if source == "" {
		value, err := s.promptValue(rl, "Enter filename: ")
		if err != nil {
			return err
		}
		source = value
	}
	if source == "" {
		return fmt.Errorf("no source file given")
	}

	rep, err := s.run(ctx, s.settings, source)
	if err != nil {
		return err
	}
	return s.render(rep)
}

func (s *Session) promptValue(rl *readline.Instance, prompt string) (string, error) {
	rl.SetPrompt(prompt)
	defer rl.SetPrompt("gavel> ")
	line, err := rl.Readline()
	if err != nil {
		return "", fmt.Errorf("read input failed: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (s *Session) render(rep result.Report) error {
	defer func() { _ = s.outputWriter.Flush() }()
	if s.prettyJSON {
		return summary.WriteJSON(s.outputWriter, rep, true)
	}
	return summary.WriteText(s.outputWriter, rep, summary.TextOptions{Color: s.color})
}

func (s *Session) printHelp() {
	s.printLine("usage: judge <source-file> | <source-file>")
	s.printLine("system: help | exit | show config | import <pack.tar.zst>")
	s.printLine("settings: set tests|lang|strategy|checker|limit|parallel|json")
	s.printLine("examples:")
	s.printLine("  judge ./main.cpp")
	s.printLine("  set strategy checker")
	s.printLine("  set checker \"./check --strict\"")
	s.printLine("  set limit 2s")
}

func (s *Session) printLine(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.outputWriter, format+"\n", args...)
	_ = s.outputWriter.Flush()
}

func orAuto(v string) string {
	if v == "" {
		return "<detect from extension>"
	}
	return v
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
