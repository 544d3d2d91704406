// configgen expands a contest profile into one gavel config per problem.
// A profile names a base config plus per problem overrides, so a contest
// keeps a single source of truth for limits and checkers.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

type Profile struct {
	OutputDir string                    `yaml:"outputDir"`
	Base      string                    `yaml:"base"`
	Shared    map[string]interface{}    `yaml:"shared"`
	Problems  map[string]ProblemProfile `yaml:"problems"`
}

type ProblemProfile struct {
	Output    string                 `yaml:"output"`
	Overrides map[string]interface{} `yaml:"overrides"`
}

func main() {
	profilePath := flag.String("profile", "configs/contest.yaml", "Path to contest profile")
	outputDir := flag.String("output-dir", "", "Override output directory")
	flag.Parse()

	profilePathAbs, err := filepath.Abs(*profilePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "resolve profile path failed: %v\n", err)
		os.Exit(1)
	}

	profile, err := loadProfile(profilePathAbs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load profile failed: %v\n", err)
		os.Exit(1)
	}

	if *outputDir != "" {
		profile.OutputDir = *outputDir
	}
	if profile.OutputDir == "" {
		fmt.Fprintln(os.Stderr, "output directory is required")
		os.Exit(1)
	}
	profileDir := filepath.Dir(profilePathAbs)
	if !filepath.IsAbs(profile.OutputDir) {
		profile.OutputDir = filepath.Join(profileDir, profile.OutputDir)
	}

	if err := os.MkdirAll(profile.OutputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create output directory failed: %v\n", err)
		os.Exit(1)
	}

	basePath := profile.Base
	if basePath != "" && !filepath.IsAbs(basePath) {
		basePath = filepath.Join(profileDir, basePath)
	}

	problemNames := make([]string, 0, len(profile.Problems))
	for name := range profile.Problems {
		problemNames = append(problemNames, name)
	}
	sort.Strings(problemNames)

	for _, name := range problemNames {
		problem := profile.Problems[name]

		config := interface{}(map[string]interface{}{})
		if basePath != "" {
			config, err = loadYAML(basePath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "load base config for %q failed: %v\n", name, err)
				os.Exit(1)
			}
		}
		config = normalizeValue(config)

		if len(profile.Shared) > 0 {
			config, err = mergeMap(config, normalizeValue(profile.Shared))
			if err != nil {
				fmt.Fprintf(os.Stderr, "merge shared overrides for %q failed: %v\n", name, err)
				os.Exit(1)
			}
		}
		if len(problem.Overrides) > 0 {
			config, err = mergeMap(config, normalizeValue(problem.Overrides))
			if err != nil {
				fmt.Fprintf(os.Stderr, "merge overrides for %q failed: %v\n", name, err)
				os.Exit(1)
			}
		}

		outputPath, err := resolveOutputPath(profile.OutputDir, name, problem)
		if err != nil {
			fmt.Fprintf(os.Stderr, "resolve output path for %q failed: %v\n", name, err)
			os.Exit(1)
		}

		if err := writeYAML(outputPath, config); err != nil {
			fmt.Fprintf(os.Stderr, "write config for %q failed: %v\n", name, err)
			os.Exit(1)
		}
	}
}

func loadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile failed: %w", err)
	}

	var profile Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parse profile failed: %w", err)
	}
	if len(profile.Problems) == 0 {
		return nil, errors.New("profile has no problems")
	}
	return &profile, nil
}

func loadYAML(path string) (interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read yaml failed: %w", err)
	}

	var value interface{}
	if err := yaml.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("parse yaml failed: %w", err)
	}
	return value, nil
}

func writeYAML(path string, value interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir failed: %w", err)
	}
	data, err := yaml.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal yaml failed: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write yaml failed: %w", err)
	}
	return nil
}

func resolveOutputPath(outputDir, name string, problem ProblemProfile) (string, error) {
	output := problem.Output
	if output == "" {
		output = name + ".yaml"
	}
	if filepath.IsAbs(output) {
		return output, nil
	}
	return filepath.Join(outputDir, output), nil
}

func normalizeValue(value interface{}) interface{} {
	switch typed := value.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(typed))
		for k, v := range typed {
			out[k] = normalizeValue(v)
		}
		return out
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(typed))
		for k, v := range typed {
			key, ok := k.(string)
			if !ok {
				key = fmt.Sprintf("%v", k)
			}
			out[key] = normalizeValue(v)
		}
		return out
	case []interface{}:
		out := make([]interface{}, 0, len(typed))
		for _, item := range typed {
			out = append(out, normalizeValue(item))
		}
		return out
	default:
		return value
	}
}

func mergeMap(base interface{}, override interface{}) (interface{}, error) {
	baseMap, ok := base.(map[string]interface{})
	if !ok {
		return nil, errors.New("base config is not a map")
	}
	overrideMap, ok := override.(map[string]interface{})
	if !ok {
		return nil, errors.New("override config is not a map")
	}

	merged := make(map[string]interface{}, len(baseMap))
	for k, v := range baseMap {
		merged[k] = v
	}

	for key, overrideValue := range overrideMap {
		baseValue, exists := merged[key]
		if !exists {
			merged[key] = overrideValue
			continue
		}

		baseChild, baseIsMap := baseValue.(map[string]interface{})
		overrideChild, overrideIsMap := overrideValue.(map[string]interface{})
		if baseIsMap && overrideIsMap {
			combined, err := mergeMap(baseChild, overrideChild)
			if err != nil {
				return nil, err
			}
			merged[key] = combined
			continue
		}
		merged[key] = overrideValue
	}
	return merged, nil
}
