package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gavel/internal/judge"
	"gavel/internal/judge/compare"
	"gavel/pkg/utils/logger"

	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath   = "configs/gavel.yaml"
	defaultTestRoot     = "./testcases"
	defaultTimeLimit    = 5 * time.Second
	defaultCompileLimit = 30 * time.Second
	defaultCheckerLimit = 10 * time.Second
)

// TestsConfig holds test case discovery settings.
type TestsConfig struct {
	Root          string `yaml:"root"`
	InputPattern  string `yaml:"inputPattern"`
	AnswerPattern string `yaml:"answerPattern"`
}

// RunConfig holds execution settings.
type RunConfig struct {
	TimeLimit     time.Duration `yaml:"timeLimit"`
	CompileLimit  time.Duration `yaml:"compileLimit"`
	Parallelism   int           `yaml:"parallelism"`
	WorkRoot      string        `yaml:"workRoot"`
	KeepWorkspace bool          `yaml:"keepWorkspace"`
}

// CompareConfig holds output comparison settings.
type CompareConfig struct {
	Strategy     string        `yaml:"strategy"`
	Checker      string        `yaml:"checker"`
	CheckerLimit time.Duration `yaml:"checkerLimit"`
}

// IOConfig holds submission input and output settings.
type IOConfig struct {
	Mode       string `yaml:"mode"`
	InputFile  string `yaml:"inputFile"`
	OutputFile string `yaml:"outputFile"`
}

// AppConfig holds gavel configuration.
type AppConfig struct {
	Logger   logger.Config `yaml:"logger"`
	Language string        `yaml:"language"`
	Tests    TestsConfig   `yaml:"tests"`
	Run      RunConfig     `yaml:"run"`
	Compare  CompareConfig `yaml:"compare"`
	IO       IOConfig      `yaml:"io"`
}

func loadYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file failed: %w", err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse config file failed: %w", err)
	}
	return nil
}

// loadAppConfig reads the YAML config when present. A missing file is only
// an error when the path was given explicitly, so the tool works out of the
// box in a bare directory.
func loadAppConfig(path string, explicit bool) (*AppConfig, error) {
	var cfg AppConfig
	if err := loadYAML(path, &cfg); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

// applyEnvOverrides layers GAVEL_* environment variables on top of the
// file. Only string settings come from the environment, numbers and
// durations belong in the config file or on the command line.
func applyEnvOverrides(cfg *AppConfig) {
	cfg.Tests.Root = getenvWithDefault("GAVEL_TEST_ROOT", cfg.Tests.Root)
	cfg.Language = getenvWithDefault("GAVEL_LANGUAGE", cfg.Language)
	cfg.Compare.Strategy = getenvWithDefault("GAVEL_STRATEGY", cfg.Compare.Strategy)
	cfg.Compare.Checker = getenvWithDefault("GAVEL_CHECKER", cfg.Compare.Checker)
	cfg.Run.WorkRoot = getenvWithDefault("GAVEL_WORK_ROOT", cfg.Run.WorkRoot)
	cfg.Logger.Level = getenvWithDefault("GAVEL_LOG_LEVEL", cfg.Logger.Level)
	cfg.Logger.Format = getenvWithDefault("GAVEL_LOG_FORMAT", cfg.Logger.Format)
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Tests.Root == "" {
		cfg.Tests.Root = defaultTestRoot
	}
	if cfg.Run.TimeLimit == 0 {
		cfg.Run.TimeLimit = defaultTimeLimit
	}
	if cfg.Run.CompileLimit == 0 {
		cfg.Run.CompileLimit = defaultCompileLimit
	}
	if cfg.Run.Parallelism <= 0 {
		cfg.Run.Parallelism = 1
	}
	if cfg.Run.WorkRoot == "" {
		cfg.Run.WorkRoot = filepath.Join(os.TempDir(), "gavel")
	}
	if cfg.Compare.Strategy == "" {
		cfg.Compare.Strategy = compare.StrategyLines
	}
	if cfg.Compare.CheckerLimit == 0 {
		cfg.Compare.CheckerLimit = defaultCheckerLimit
	}
	if cfg.IO.Mode == "" {
		cfg.IO.Mode = judge.IOModeStdio
	}
}

func getenvWithDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
