package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"gavel/internal/judge"
	"gavel/internal/judge/build"
	"gavel/internal/judge/compare"
	"gavel/internal/judge/engine"
	"gavel/internal/judge/repl"
	"gavel/internal/judge/result"
	"gavel/internal/judge/summary"
	"gavel/internal/judge/testcase"
	appErr "gavel/pkg/errors"
	"gavel/pkg/utils/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", defaultConfigPath, "Path to config file")
	testRoot := flag.String("tests", "", "Override test case directory")
	language := flag.String("lang", "", "Override language, default detects from the file extension")
	strategy := flag.String("strategy", "", "Override comparison strategy (lines|checker)")
	checker := flag.String("checker", "", "Override checker command, switches strategy to checker")
	timeLimit := flag.Duration("time-limit", 0, "Override per case wall clock limit (e.g. 2s)")
	parallel := flag.Int("parallel", 0, "Override worker count")
	ioMode := flag.String("io-mode", "", "Override submission io mode (stdio|fileio)")
	importPack := flag.String("import", "", "Import a .tar.zst test case pack before judging")
	jsonOut := flag.Bool("json", false, "Write the report as JSON")
	outPath := flag.String("o", "", "Write the report to a file instead of stdout")
	noColor := flag.Bool("no-color", false, "Disable ANSI colors in the text report")
	interactive := flag.Bool("i", false, "Start an interactive session")
	keep := flag.Bool("keep-workspace", false, "Keep run workspaces for debugging")
	flag.Parse()

	// A .env next to the binary feeds the GAVEL_* overrides.
	_ = godotenv.Load()

	cfg, err := loadAppConfig(*configPath, flagWasSet("config"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load app config failed: %v\n", err)
		return appErr.ConfigError.ExitStatus()
	}

	if *testRoot != "" {
		cfg.Tests.Root = *testRoot
	}
	if *language != "" {
		cfg.Language = *language
	}
	if *strategy != "" {
		cfg.Compare.Strategy = *strategy
	}
	if *checker != "" {
		cfg.Compare.Checker = *checker
		cfg.Compare.Strategy = compare.StrategyChecker
	}
	if *timeLimit > 0 {
		cfg.Run.TimeLimit = *timeLimit
	}
	if *parallel > 0 {
		cfg.Run.Parallelism = *parallel
	}
	if *ioMode != "" {
		cfg.IO.Mode = *ioMode
	}
	if *keep {
		cfg.Run.KeepWorkspace = true
	}

	if err := logger.Init(cfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		return appErr.ConfigError.ExitStatus()
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *importPack != "" {
		if err := importPackInto(ctx, cfg, *importPack); err != nil {
			return fail(ctx, err)
		}
		logger.Info(ctx, "test case pack imported", zap.String("archive", *importPack), zap.String("root", cfg.Tests.Root))
		if flag.Arg(0) == "" && !*interactive {
			return 0
		}
	}

	if *interactive {
		session := repl.New(replRun(cfg), replImport(cfg), replSettings(cfg), !*noColor)
		if err := session.Run(ctx); err != nil {
			return fail(ctx, err)
		}
		return 0
	}

	source := flag.Arg(0)
	if source == "" {
		fmt.Fprintln(os.Stderr, "usage: gavel [flags] <source-file>")
		flag.PrintDefaults()
		return appErr.InvalidParams.ExitStatus()
	}

	rep, err := judgeOnce(ctx, cfg, source)
	if err != nil {
		return fail(ctx, err)
	}

	if err := writeReport(rep, *jsonOut, *outPath, !*noColor); err != nil {
		return fail(ctx, err)
	}
	if rep.Overall.Accepted() {
		return 0
	}
	return 1
}

// judgeOnce wires the full judging graph for one submission and runs it.
func judgeOnce(ctx context.Context, cfg *AppConfig, source string) (result.Report, error) {
	eng := engine.New()

	var (
		lang build.Language
		err  error
	)
	if cfg.Language == "" {
		lang, err = build.Detect(source)
	} else {
		lang, err = build.For(cfg.Language)
	}
	if err != nil {
		return result.Report{}, err
	}

	repo, err := newRepository(cfg)
	if err != nil {
		return result.Report{}, err
	}

	strategy, err := compare.New(compare.Config{
		Strategy:       cfg.Compare.Strategy,
		CheckerCommand: cfg.Compare.Checker,
		CheckerLimit:   cfg.Compare.CheckerLimit,
		Engine:         eng,
	})
	if err != nil {
		return result.Report{}, err
	}

	j, err := judge.New(judge.Config{
		Cases: repo,
		Adapter: func(dir string) (build.Adapter, error) {
			return build.NewAdapter(build.Config{
				Language:     lang,
				Engine:       eng,
				BuildDir:     dir,
				CompileLimit: cfg.Run.CompileLimit,
			})
		},
		Strategy:       strategy,
		Engine:         eng,
		TimeLimit:      cfg.Run.TimeLimit,
		Parallelism:    cfg.Run.Parallelism,
		WorkRoot:       cfg.Run.WorkRoot,
		KeepWorkspace:  cfg.Run.KeepWorkspace,
		IOMode:         cfg.IO.Mode,
		InputFileName:  cfg.IO.InputFile,
		OutputFileName: cfg.IO.OutputFile,
	})
	if err != nil {
		return result.Report{}, err
	}
	return j.Run(ctx, source)
}

func newRepository(cfg *AppConfig) (*testcase.Repository, error) {
	return testcase.NewRepository(testcase.Config{
		Root:          cfg.Tests.Root,
		InputPattern:  cfg.Tests.InputPattern,
		AnswerPattern: cfg.Tests.AnswerPattern,
	})
}

func importPackInto(ctx context.Context, cfg *AppConfig, archive string) error {
	repo, err := newRepository(cfg)
	if err != nil {
		return err
	}
	return repo.ImportPack(ctx, archive)
}

func replSettings(cfg *AppConfig) repl.Settings {
	return repl.Settings{
		TestRoot:       cfg.Tests.Root,
		Language:       cfg.Language,
		Strategy:       cfg.Compare.Strategy,
		CheckerCommand: cfg.Compare.Checker,
		TimeLimit:      cfg.Run.TimeLimit,
		Parallelism:    cfg.Run.Parallelism,
		IOMode:         cfg.IO.Mode,
	}
}

func replRun(cfg *AppConfig) repl.RunFunc {
	return func(ctx context.Context, st repl.Settings, source string) (result.Report, error) {
		rc := *cfg
		applySettings(&rc, st)
		return judgeOnce(ctx, &rc, source)
	}
}

func replImport(cfg *AppConfig) repl.ImportFunc {
	return func(ctx context.Context, st repl.Settings, archive string) error {
		rc := *cfg
		applySettings(&rc, st)
		return importPackInto(ctx, &rc, archive)
	}
}

func applySettings(cfg *AppConfig, st repl.Settings) {
	cfg.Tests.Root = st.TestRoot
	cfg.Language = st.Language
	cfg.Compare.Strategy = st.Strategy
	cfg.Compare.Checker = st.CheckerCommand
	cfg.Run.TimeLimit = st.TimeLimit
	cfg.Run.Parallelism = st.Parallelism
	cfg.IO.Mode = st.IOMode
}

func writeReport(rep result.Report, jsonOut bool, outPath string, color bool) error {
	var w io.Writer = os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return appErr.Wrapf(err, appErr.SystemError, "create report file failed")
		}
		defer func() {
			_ = f.Close()
		}()
		w = f
		color = false
	}
	if jsonOut {
		return summary.WriteJSON(w, rep, true)
	}
	return summary.WriteText(w, rep, summary.TextOptions{Color: color})
}

func fail(ctx context.Context, err error) int {
	logger.Error(ctx, "gavel run failed", zap.Error(err))
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	return appErr.GetCode(err).ExitStatus()
}

func flagWasSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
