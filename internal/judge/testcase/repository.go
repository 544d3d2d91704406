// Package testcase discovers ordered test case pairs on disk.
package testcase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	appErr "gavel/pkg/errors"
	"gavel/pkg/utils/logger"
)

// Default file name patterns. They accept the common layouts seen in the
// wild: in.txt / out.txt, input.txt / output.txt, p2in1.txt / p2out1.txt,
// 1.in / 1.out / 1.ans.
const (
	defaultInputPattern  = `(?i)^input\.txt$|(^|[^a-z])in[0-9]*\.txt$|\.in$`
	defaultAnswerPattern = `(?i)^output\.txt$|(^|[^a-z])out[0-9]*\.txt$|\.out$|\.ans$`
)

// Case is one discovered (input, answer) pair. Immutable after discovery.
type Case struct {
	ID         string
	InputPath  string
	AnswerPath string
}

// Skipped records a malformed candidate folder left out of execution.
type Skipped struct {
	ID     string
	Reason string
}

// Config parameterizes a Repository.
type Config struct {
	Root          string
	InputPattern  string // regex matched against file names, empty uses the default
	AnswerPattern string
}

// Repository scans a directory tree for test cases. Each immediate
// subdirectory of the root holding exactly one input and one answer file is a
// case; everything else is skipped with a reason.
type Repository struct {
	root     string
	inputRe  *regexp.Regexp
	answerRe *regexp.Regexp
}

// NewRepository creates a Repository for the given root.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Root == "" {
		return nil, appErr.ValidationError("root", "required")
	}
	if cfg.InputPattern == "" {
		cfg.InputPattern = defaultInputPattern
	}
	if cfg.AnswerPattern == "" {
		cfg.AnswerPattern = defaultAnswerPattern
	}

	inputRe, err := regexp.Compile(cfg.InputPattern)
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.ValidationFailed, "invalid input pattern: %v", err)
	}
	answerRe, err := regexp.Compile(cfg.AnswerPattern)
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.ValidationFailed, "invalid answer pattern: %v", err)
	}

	return &Repository{root: cfg.Root, inputRe: inputRe, answerRe: answerRe}, nil
}

// Root returns the repository root directory.
func (r *Repository) Root() string {
	return r.root
}

// Discover walks the root and returns well-formed cases in lexicographic
// subfolder order, alongside malformed candidates. A missing root is a hard
// failure; a root with no candidates at all yields NoTestCases.
func (r *Repository) Discover(ctx context.Context) ([]Case, []Skipped, error) {
	info, err := os.Stat(r.root)
	if err != nil {
		return nil, nil, appErr.Wrapf(err, appErr.TestRootMissing, "test case directory %s does not exist", r.root)
	}
	if !info.IsDir() {
		return nil, nil, appErr.Newf(appErr.DiscoveryFailed, "test case path %s is not a directory", r.root)
	}

	entries, err := os.ReadDir(r.root)
	if err != nil {
		return nil, nil, appErr.Wrapf(err, appErr.DiscoveryFailed, "read test case directory failed: %v", err)
	}

	var cases []Case
	var skipped []Skipped
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		id := entry.Name()
		c, reason := r.examine(id)
		if reason != "" {
			skipped = append(skipped, Skipped{ID: id, Reason: reason})
			continue
		}
		cases = append(cases, c)
	}

	if len(cases) == 0 && len(skipped) == 0 {
		return nil, nil, appErr.Newf(appErr.NoTestCases, "no test cases under %s", r.root)
	}

	logger.Debug(ctx, "test cases discovered",
		zap.String("root", r.root),
		zap.Int("cases", len(cases)),
		zap.Int("skipped", len(skipped)))

	return cases, skipped, nil
}

// examine checks one candidate folder for the exactly-one-input and
// exactly-one-answer rule. It returns the case or a skip reason.
func (r *Repository) examine(id string) (Case, string) {
	dir := filepath.Join(r.root, id)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Case{}, fmt.Sprintf("unreadable folder: %v", err)
	}

	var inputs, answers []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if r.inputRe.MatchString(name) {
			inputs = append(inputs, name)
		}
		if r.answerRe.MatchString(name) {
			answers = append(answers, name)
		}
	}

	switch {
	case len(inputs) == 0:
		return Case{}, "no input file"
	case len(inputs) > 1:
		return Case{}, "multiple input files: " + strings.Join(inputs, ", ")
	case len(answers) == 0:
		return Case{}, "no answer file"
	case len(answers) > 1:
		return Case{}, "multiple answer files: " + strings.Join(answers, ", ")
	}

	return Case{
		ID:         id,
		InputPath:  filepath.Join(dir, inputs[0]),
		AnswerPath: filepath.Join(dir, answers[0]),
	}, ""
}
