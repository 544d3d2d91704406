package build

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/shlex"
	"go.uber.org/zap"

	"gavel/internal/judge/engine"
	"gavel/internal/judge/result"
	appErr "gavel/pkg/errors"
	"gavel/pkg/utils/logger"
)

const defaultCompileLimit = 30 * time.Second

// Invocation is the command a judged case executes. Paths in Cmd are
// absolute so the process can run from any working directory.
type Invocation struct {
	Cmd []string
	Env []string
}

// Adapter prepares one submission for execution. A compile rejection is a
// judged outcome reported through CompileFailure, not an error.
type Adapter interface {
	Language() Language
	Build(ctx context.Context, sourcePath string) (Invocation, *result.CompileFailure, error)
}

// Config parameterizes an Adapter.
type Config struct {
	Language     Language
	Engine       engine.Engine
	BuildDir     string
	CompileLimit time.Duration
}

type engineAdapter struct {
	lang         Language
	eng          engine.Engine
	buildDir     string
	compileLimit time.Duration
}

// NewAdapter creates an Adapter that compiles through the given engine.
func NewAdapter(cfg Config) (Adapter, error) {
	if cfg.Engine == nil {
		return nil, appErr.ValidationError("engine", "required")
	}
	if cfg.Language.ID == "" {
		return nil, appErr.ValidationError("language", "required")
	}
	if cfg.BuildDir == "" {
		return nil, appErr.ValidationError("buildDir", "required")
	}
	buildDir, err := filepath.Abs(cfg.BuildDir)
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.WorkspaceError, "resolve build dir failed")
	}
	if cfg.CompileLimit <= 0 {
		cfg.CompileLimit = defaultCompileLimit
	}
	return &engineAdapter{
		lang:         cfg.Language,
		eng:          cfg.Engine,
		buildDir:     buildDir,
		compileLimit: cfg.CompileLimit,
	}, nil
}

func (a *engineAdapter) Language() Language {
	return a.lang
}

func (a *engineAdapter) Build(ctx context.Context, sourcePath string) (Invocation, *result.CompileFailure, error) {
	if err := os.MkdirAll(a.buildDir, 0755); err != nil {
		return Invocation{}, nil, appErr.Wrapf(err, appErr.WorkspaceError, "create build dir failed")
	}
	if err := copySource(sourcePath, filepath.Join(a.buildDir, a.lang.SourceFile)); err != nil {
		return Invocation{}, nil, err
	}

	if a.lang.CompileEnabled {
		cmd, err := a.command(a.lang.CompileCmdTpl)
		if err != nil {
			return Invocation{}, nil, err
		}

		logger.Info(ctx, "compiling submission",
			zap.String("language", a.lang.ID),
			zap.String("source", sourcePath))

		res, err := a.eng.Run(ctx, engine.Request{
			Cmd:       cmd,
			WorkDir:   a.buildDir,
			Env:       a.lang.Env,
			WallLimit: a.compileLimit,
		})
		if err != nil {
			return Invocation{}, nil, err
		}
		if res.TimedOut {
			return Invocation{}, &result.CompileFailure{
				ExitCode: res.ExitCode,
				Output:   "compilation timed out",
			}, nil
		}
		if res.ExitCode != 0 {
			return Invocation{}, &result.CompileFailure{
				ExitCode: res.ExitCode,
				Output:   compileOutput(res),
			}, nil
		}
	}

	cmd, err := a.command(a.lang.RunCmdTpl)
	if err != nil {
		return Invocation{}, nil, err
	}
	return Invocation{Cmd: cmd, Env: a.lang.Env}, nil, nil
}

// command expands a template against the build dir and tokenizes it.
// Placeholders: {src} source path, {bin} binary path, {dir} build dir.
func (a *engineAdapter) command(tpl string) ([]string, error) {
	if strings.TrimSpace(tpl) == "" {
		return nil, appErr.New(appErr.InvalidCommandTemplate).WithMessage("command template is required")
	}
	expanded := tpl
	expanded = strings.ReplaceAll(expanded, "{src}", filepath.Join(a.buildDir, a.lang.SourceFile))
	expanded = strings.ReplaceAll(expanded, "{bin}", filepath.Join(a.buildDir, a.lang.BinaryFile))
	expanded = strings.ReplaceAll(expanded, "{dir}", a.buildDir)
	fields, err := shlex.Split(expanded)
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.InvalidCommandTemplate, "parse command template failed")
	}
	if len(fields) == 0 {
		return nil, appErr.New(appErr.InvalidCommandTemplate).WithMessage("command is empty after expansion")
	}
	return fields, nil
}

// maxCompileOutput bounds the diagnostics carried into the report. Compilers
// can emit megabytes on template errors.
const maxCompileOutput = 64 << 10

func compileOutput(res result.Execution) string {
	out := strings.TrimSpace(string(res.Stderr))
	if out == "" {
		out = strings.TrimSpace(string(res.Stdout))
	}
	if len(out) > maxCompileOutput {
		out = out[:maxCompileOutput] + "\n... (truncated)"
	}
	return out
}

func copySource(sourcePath, targetPath string) error {
	content, err := os.ReadFile(sourcePath)
	if err != nil {
		return appErr.Wrapf(err, appErr.SourceNotFound, "read source %s: %v", sourcePath, err)
	}
	if err := os.WriteFile(targetPath, content, 0644); err != nil {
		return appErr.Wrapf(err, appErr.WorkspaceError, "write source failed: %v", err)
	}
	return nil
}
