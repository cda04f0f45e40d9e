package substitution

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTable_Apply(t *testing.T) {
	table := NewTable([]Pair{
		{Find: "I", Replace: "you"},
		{Find: "you", Replace: "I"},
		{Find: "I am", Replace: "you are"},
		{Find: "my", Replace: "your"},
	})

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "swap without re-substitution", in: "I like you", want: "you like I"},
		{name: "longest match first", in: "I am here", want: "you are here"},
		{name: "case insensitive", in: "MY dog", want: "your dog"},
		{name: "word boundaries", in: "myself mystery", want: "myself mystery"},
		{name: "punctuation boundary", in: "is it my, or I?", want: "is it your, or you?"},
		{name: "apostrophe is part of a word", in: "I'm fine", want: "I'm fine"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := table.Apply(tt.in); got != tt.want {
				t.Errorf("Apply(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewTable_DuplicatesAndBlanks(t *testing.T) {
	table := NewTable([]Pair{
		{Find: "cat", Replace: "dog"},
		{Find: " ", Replace: "x"},
		{Find: "CAT", Replace: "mouse"},
	})

	if table.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", table.Len())
	}
	if got := table.Apply("a cat"); got != "a mouse" {
		t.Errorf("expected later duplicate to win, got %q", got)
	}
}

func TestTable_Nil(t *testing.T) {
	var table *Table
	if got := table.Apply("unchanged"); got != "unchanged" {
		t.Errorf("nil table changed text: %q", got)
	}
}

func TestDefaults(t *testing.T) {
	tables := Defaults()

	if got := tables.Person.Apply("you are with me"); got != "I am with you" {
		t.Errorf("person: got %q", got)
	}
	if got := tables.Person2.Apply("I am tired"); got != "he or she is tired" {
		t.Errorf("person2: got %q", got)
	}
	if got := tables.Gender.Apply("she gave it to him"); got != "he gave it to her" {
		t.Errorf("gender: got %q", got)
	}
	if got := tables.Substitution.Apply("I can't go"); got != "I can not go" {
		t.Errorf("substitution: got %q", got)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subs.yaml")
	content := `
gender:
  - find: "king"
    replace: "queen"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	tables, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if got := tables.Gender.Apply("the king"); got != "the queen" {
		t.Errorf("expected file table, got %q", got)
	}
	if tables.Person.Len() != Defaults().Person.Len() {
		t.Error("expected person table to keep defaults")
	}
}

func TestLoadFile_Errors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := Parse([]byte("person: {")); err == nil {
		t.Error("expected error for invalid yaml")
	}
}
