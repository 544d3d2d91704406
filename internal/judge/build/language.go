// Package build turns submission sources into runnable invocations.
package build

import (
	"path/filepath"
	"sort"
	"strings"

	appErr "gavel/pkg/errors"
)

// Language defines how to compile and run one supported language.
type Language struct {
	ID             string
	Name           string
	SourceFile     string // canonical source name inside the build dir
	BinaryFile     string
	CompileEnabled bool
	CompileCmdTpl  string
	RunCmdTpl      string
	Env            []string
	TimeMultiplier float64 // scales the per-case time limit, 0 means 1x
}

// languages holds the built-in registry keyed by canonical ID.
var languages = map[string]Language{}

// aliases maps alternate spellings to canonical IDs.
var aliases = map[string]string{}

// extensions maps source file extensions to canonical IDs.
var extensions = map[string]string{}

func register(lang Language, names []string, exts []string) {
	languages[lang.ID] = lang
	for _, n := range names {
		aliases[n] = lang.ID
	}
	for _, e := range exts {
		extensions[e] = lang.ID
	}
}

// For resolves a language by ID or alias.
func For(id string) (Language, error) {
	key := strings.ToLower(strings.TrimSpace(id))
	if canonical, ok := aliases[key]; ok {
		key = canonical
	}
	if lang, ok := languages[key]; ok {
		return lang, nil
	}
	return Language{}, appErr.Newf(appErr.LanguageNotSupported, "unsupported language: %s", id)
}

// Detect resolves a language from the source file extension.
func Detect(sourcePath string) (Language, error) {
	ext := strings.ToLower(filepath.Ext(sourcePath))
	if id, ok := extensions[ext]; ok {
		return languages[id], nil
	}
	return Language{}, appErr.Newf(appErr.LanguageNotSupported, "cannot detect language from %q", filepath.Base(sourcePath))
}

// Supported lists canonical language IDs in stable order.
func Supported() []string {
	ids := make([]string, 0, len(languages))
	for id := range languages {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
