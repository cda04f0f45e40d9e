package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"mercator-hq/parley/pkg/cli"
	"mercator-hq/parley/pkg/config"
	"mercator-hq/parley/pkg/normalize"
	"mercator-hq/parley/pkg/rules"
)

var lintFlags struct {
	strict bool
	format string
}

var lintCmd = &cobra.Command{
	Use:   "lint [paths...]",
	Short: "Validate rule files",
	Long: `Validate rule files for syntax and semantic errors.

The lint command parses every rule file and checks each rule:
  - YAML syntax and record structure
  - Template markup parses
  - Pattern, that and topic do not normalize to nothing
  - No two rules share the same pattern, that and topic (warning)

Without arguments the configured rules.paths are linted.

Examples:
  # Lint the configured rule paths
  parley lint

  # Lint a directory
  parley lint rules/

  # Strict mode (warnings as errors)
  parley lint rules/ --strict

  # JSON output for CI/CD
  parley lint rules/ --format json`,
	RunE: lintRules,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().BoolVar(&lintFlags.strict, "strict", false, "treat warnings as errors")
	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json")
}

// LintResult is the validation result for one rule file.
type LintResult struct {
	File     string        `json:"file"`
	Rules    int           `json:"rules"`
	Valid    bool          `json:"valid"`
	Errors   []LintProblem `json:"errors,omitempty"`
	Warnings []LintProblem `json:"warnings,omitempty"`
}

// LintProblem is a single error or warning.
type LintProblem struct {
	Line    int    `json:"line,omitempty"`
	Rule    string `json:"rule,omitempty"`
	Message string `json:"message"`
}

func lintRules(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	paths := args
	if len(paths) == 0 {
		paths = cfg.Rules.Paths
	}

	results, err := lintPaths(cfg, paths)
	if err != nil {
		return cli.NewCommandError("lint", err)
	}

	out := cmd.OutOrStdout()
	switch cli.OutputFormat(lintFlags.format) {
	case cli.FormatJSON:
		formatter, _ := cli.NewFormatter(cli.FormatJSON)
		if err := formatter.FormatTo(out, results); err != nil {
			return err
		}
	case cli.FormatText:
		writeLintText(out, results)
	default:
		return cli.NewUsageError("unknown format %q (want text or json)", lintFlags.format)
	}

	return lintVerdict(results, lintFlags.strict)
}

// lintPaths lints every rule file under paths.
func lintPaths(cfg *config.Config, paths []string) ([]LintResult, error) {
	norm, err := normalize.New(normalize.Options{
		StripPattern: cfg.Normalize.StripPattern,
		Splitters:    cfg.Normalize.Splitters,
		MaxThatSize:  cfg.Normalize.MaxThatSize,
		Locale:       cfg.Bot.Locale,
	})
	if err != nil {
		return nil, err
	}

	files, err := rules.NewFileSource(paths, 0, nil).Files()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.New("no rule files found")
	}

	seen := make(map[string]string)
	results := make([]LintResult, 0, len(files))
	for _, file := range files {
		results = append(results, lintFile(norm, file, seen))
	}
	return results, nil
}

// lintFile checks one file. seen maps path keys to the rule that first
// used them, across files.
func lintFile(norm *normalize.Normalizer, file string, seen map[string]string) LintResult {
	result := LintResult{File: file, Valid: true}

	rs, err := rules.LoadFile(file)
	if err != nil {
		result.Valid = false
		problem := LintProblem{Message: err.Error()}
		var pe *rules.ParseError
		if errors.As(err, &pe) {
			problem.Line = pe.Line
		}
		result.Errors = append(result.Errors, problem)
		return result
	}
	result.Rules = len(rs)

	for _, r := range rs {
		if _, err := r.Compiled(); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, LintProblem{Rule: r.Source, Message: err.Error()})
		}

		path, ok := norm.PatternPath(r.Pattern, r.That, r.Topic)
		if !ok {
			result.Valid = false
			result.Errors = append(result.Errors, LintProblem{
				Rule:    r.Source,
				Message: fmt.Sprintf("pattern %q normalizes to nothing", r.Pattern),
			})
			continue
		}

		key := path.String()
		if first, dup := seen[key]; dup {
			result.Warnings = append(result.Warnings, LintProblem{
				Rule:    r.Source,
				Message: fmt.Sprintf("duplicate of %s, the later rule wins", first),
			})
			continue
		}
		seen[key] = r.Source
	}
	return result
}

func writeLintText(w io.Writer, results []LintResult) {
	totalErrors, totalWarnings := 0, 0

	for _, result := range results {
		fmt.Fprintf(w, "Validating %s...\n", result.File)
		if len(result.Errors) == 0 && len(result.Warnings) == 0 {
			fmt.Fprintf(w, "✓ %d rules valid\n", result.Rules)
		}

		for _, p := range result.Errors {
			fmt.Fprintf(w, "✗ Error: %s%s\n", p.Message, location(p))
			totalErrors++
		}
		for _, p := range result.Warnings {
			fmt.Fprintf(w, "⚠  Warning: %s%s\n", p.Message, location(p))
			totalWarnings++
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "Summary:")
	fmt.Fprintf(w, "  %d error(s), %d warning(s)\n", totalErrors, totalWarnings)
}

func location(p LintProblem) string {
	switch {
	case p.Rule != "":
		return fmt.Sprintf(" (%s)", p.Rule)
	case p.Line > 0:
		return fmt.Sprintf(" (line %d)", p.Line)
	}
	return ""
}

// lintVerdict fails when any file has errors, or warnings in strict mode.
func lintVerdict(results []LintResult, strict bool) error {
	for _, r := range results {
		if len(r.Errors) > 0 {
			return cli.NewCommandError("lint", errors.New("validation failed"))
		}
		if strict && len(r.Warnings) > 0 {
			return cli.NewCommandError("lint", errors.New("validation failed (strict)"))
		}
	}
	return nil
}
