package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mercator-hq/parley/pkg/cli"
	"mercator-hq/parley/pkg/config"
)

func TestLintPaths_Valid(t *testing.T) {
	results, err := lintPaths(config.Default(), []string{"testdata/rules"})
	if err != nil {
		t.Fatalf("lintPaths() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 files, got %d", len(results))
	}
	for _, r := range results {
		if !r.Valid || len(r.Errors) > 0 || len(r.Warnings) > 0 {
			t.Errorf("%s: unexpected problems: %+v", r.File, r)
		}
	}
	if err := lintVerdict(results, true); err != nil {
		t.Errorf("lintVerdict() error = %v", err)
	}
}

func TestLintPaths_Broken(t *testing.T) {
	results, err := lintPaths(config.Default(), []string{"testdata/broken/broken.yaml"})
	if err != nil {
		t.Fatalf("lintPaths() error = %v", err)
	}
	r := results[0]

	if r.Valid {
		t.Fatal("expected broken file to be invalid")
	}
	if len(r.Errors) != 2 {
		t.Errorf("expected 2 errors (malformed template, empty pattern), got %+v", r.Errors)
	}
	if len(r.Warnings) != 1 || !strings.Contains(r.Warnings[0].Message, "duplicate") {
		t.Errorf("expected duplicate warning, got %+v", r.Warnings)
	}
	if err := lintVerdict(results, false); err == nil {
		t.Error("expected lint to fail")
	}
}

func TestLintPaths_StrictWarnings(t *testing.T) {
	dir := t.TempDir()
	data := "rules:\n  - pattern: HELLO\n    template: a\n  - pattern: hello\n    template: b\n"
	if err := os.WriteFile(filepath.Join(dir, "dup.yml"), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	results, err := lintPaths(config.Default(), []string{dir})
	if err != nil {
		t.Fatalf("lintPaths() error = %v", err)
	}
	if err := lintVerdict(results, false); err != nil {
		t.Errorf("warnings alone should pass, got %v", err)
	}
	if err := lintVerdict(results, true); err == nil {
		t.Error("strict mode should fail on warnings")
	}
}

func TestLintPaths_BadYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("rules: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}

	results, err := lintPaths(config.Default(), []string{dir})
	if err != nil {
		t.Fatalf("lintPaths() error = %v", err)
	}
	if results[0].Valid || len(results[0].Errors) != 1 {
		t.Errorf("expected one parse error, got %+v", results[0])
	}
}

func TestLintPaths_Errors(t *testing.T) {
	if _, err := lintPaths(config.Default(), []string{"testdata/nonexistent"}); err == nil {
		t.Error("expected error for missing path")
	}
	if _, err := lintPaths(config.Default(), []string{t.TempDir()}); err == nil {
		t.Error("expected error for directory without rule files")
	}
}

func TestWriteLintText(t *testing.T) {
	results, err := lintPaths(config.Default(), []string{"testdata/broken"})
	if err != nil {
		t.Fatalf("lintPaths() error = %v", err)
	}

	buf := &bytes.Buffer{}
	writeLintText(buf, results)

	out := buf.String()
	for _, want := range []string{"Validating testdata/broken/broken.yaml", "✗ Error:", "⚠  Warning:", "2 error(s), 1 warning(s)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if cli.ExitCode(lintVerdict(results, false)) != cli.ExitError {
		t.Error("failed lint should exit with the general error code")
	}
}
