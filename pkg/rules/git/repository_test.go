package git

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"mercator-hq/parley/pkg/config"
)

// createTestRepo initializes a repository in dir with one committed rule file.
func createTestRepo(t *testing.T, dir string) *gogit.Repository {
	t.Helper()

	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("failed to init repo: %v", err)
	}
	commitFile(t, repo, dir, "rules/greetings.yaml", "rules:\n  - pattern: HELLO\n    template: Hi there!\n")
	return repo
}

// commitFile writes name under dir and commits it.
func commitFile(t *testing.T, repo *gogit.Repository, dir, name, content string) {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("failed to get worktree: %v", err)
	}
	if _, err := worktree.Add(name); err != nil {
		t.Fatalf("failed to add %s: %v", name, err)
	}
	_, err = worktree.Commit("update "+name, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  "Test User",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatalf("failed to commit: %v", err)
	}
}

func testConfig(t *testing.T, source string) *config.GitRulesConfig {
	t.Helper()
	return &config.GitRulesConfig{
		Repository:   source,
		Branch:       "master", // go-git init creates "master" by default
		Path:         "rules",
		LocalPath:    filepath.Join(t.TempDir(), "clone"),
		PollInterval: 20 * time.Millisecond,
		Timeout:      10 * time.Second,
		Auth:         config.GitAuthConfig{Type: "none"},
	}
}

func TestNewRepository(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.GitRulesConfig
		wantErr bool
	}{
		{name: "nil config", wantErr: true},
		{
			name:    "empty repository",
			cfg:     &config.GitRulesConfig{Branch: "main", LocalPath: "/tmp/x"},
			wantErr: true,
		},
		{
			name:    "empty branch",
			cfg:     &config.GitRulesConfig{Repository: "https://example.com/r.git", LocalPath: "/tmp/x"},
			wantErr: true,
		},
		{
			name:    "empty local path",
			cfg:     &config.GitRulesConfig{Repository: "https://example.com/r.git", Branch: "main"},
			wantErr: true,
		},
		{
			name: "bad auth",
			cfg: &config.GitRulesConfig{
				Repository: "https://example.com/r.git", Branch: "main", LocalPath: "/tmp/x",
				Auth: config.GitAuthConfig{Type: "token"},
			},
			wantErr: true,
		},
		{
			name: "valid",
			cfg: &config.GitRulesConfig{
				Repository: "https://example.com/r.git", Branch: "main", LocalPath: "/tmp/x",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRepository(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewRepository() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRepository_Clone(t *testing.T) {
	sourceDir := t.TempDir()
	createTestRepo(t, sourceDir)

	cfg := testConfig(t, sourceDir)
	repo, err := NewRepository(cfg)
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}
	if err := repo.Clone(context.Background()); err != nil {
		t.Fatalf("Clone() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(repo.RulePath(), "greetings.yaml")); err != nil {
		t.Errorf("expected rule file in clone: %v", err)
	}

	// A second manager over the same clone opens it instead of cloning.
	again, err := NewRepository(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := again.Clone(context.Background()); err != nil {
		t.Errorf("Clone() over existing clone error = %v", err)
	}
}

func TestRepository_CloneMissingRemote(t *testing.T) {
	cfg := testConfig(t, filepath.Join(t.TempDir(), "nonexistent"))
	repo, err := NewRepository(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.Clone(context.Background()); err == nil {
		t.Error("Clone() expected error for missing remote")
	}
}

func TestRepository_CloneWithCleanOnStart(t *testing.T) {
	sourceDir := t.TempDir()
	createTestRepo(t, sourceDir)

	cfg := testConfig(t, sourceDir)
	cfg.CleanOnStart = true

	stale := filepath.Join(cfg.LocalPath, "stale.txt")
	if err := os.MkdirAll(cfg.LocalPath, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(stale, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	repo, err := NewRepository(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.Clone(context.Background()); err != nil {
		t.Fatalf("Clone() error = %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Errorf("expected stale file to be removed, stat error = %v", err)
	}
}

func TestRepository_Pull(t *testing.T) {
	sourceDir := t.TempDir()
	origin := createTestRepo(t, sourceDir)

	repo, err := NewRepository(testConfig(t, sourceDir))
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.Clone(context.Background()); err != nil {
		t.Fatalf("Clone() error = %v", err)
	}

	result, err := repo.Pull(context.Background())
	if err != nil {
		t.Fatalf("Pull() error = %v", err)
	}
	if result.HadChanges {
		t.Errorf("Pull() on fresh clone reported changes: %+v", result)
	}

	commitFile(t, origin, sourceDir, "rules/weather.yaml", "rules:\n  - pattern: RAIN\n    template: Bring an umbrella.\n")
	commitFile(t, origin, sourceDir, "README.md", "rules repo\n")

	result, err = repo.Pull(context.Background())
	if err != nil {
		t.Fatalf("Pull() error = %v", err)
	}
	if !result.HadChanges {
		t.Fatal("Pull() expected changes")
	}
	if len(result.ChangedFiles) != 2 {
		t.Errorf("ChangedFiles = %v, want 2 entries", result.ChangedFiles)
	}

	commit, err := repo.CurrentCommit()
	if err != nil {
		t.Fatalf("CurrentCommit() error = %v", err)
	}
	if commit.SHA != result.ToSHA {
		t.Errorf("CurrentCommit().SHA = %s, want %s", commit.SHA, result.ToSHA)
	}
	if commit.Author != "Test User" {
		t.Errorf("CurrentCommit().Author = %q", commit.Author)
	}
}

func TestRepository_NotCloned(t *testing.T) {
	repo, err := NewRepository(testConfig(t, "/unused"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Pull(context.Background()); !errors.Is(err, ErrNotCloned) {
		t.Errorf("Pull() error = %v, want ErrNotCloned", err)
	}
	if _, err := repo.CurrentCommit(); !errors.Is(err, ErrNotCloned) {
		t.Errorf("CurrentCommit() error = %v, want ErrNotCloned", err)
	}
}
