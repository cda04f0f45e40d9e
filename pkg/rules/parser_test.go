package rules

import (
	"errors"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	data := []byte(`
topic: "PETS"
rules:
  - pattern: "DO YOU LIKE CATS"
    template: "Yes."
  - pattern: "HELLO *"
    that: "*"
    topic: "*"
    template: "Hi <star/>!"
`)

	rs, err := Parse(data, "pets.yaml")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(rs) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(rs))
	}

	if rs[0].Topic != "PETS" {
		t.Errorf("expected file topic to apply, got %q", rs[0].Topic)
	}
	if rs[1].Topic != "*" {
		t.Errorf("expected rule topic to win, got %q", rs[1].Topic)
	}
	if rs[0].Source != "pets.yaml:4" {
		t.Errorf("expected source with line number, got %q", rs[0].Source)
	}
	if rs[1].Template != "Hi <star/>!" {
		t.Errorf("unexpected template %q", rs[1].Template)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantLine int
		wantErr  error
	}{
		{
			name:    "invalid yaml",
			data:    "rules: [",
			wantErr: nil,
		},
		{
			name: "missing pattern",
			data: `rules:
  - template: "x"
`,
			wantLine: 2,
			wantErr:  ErrEmptyPattern,
		},
		{
			name: "wrong type",
			data: `rules:
  - pattern: [1, 2]
`,
			wantLine: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), "bad.yaml")
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected ParseError, got %v", err)
			}
			if tt.wantLine != 0 && perr.Line != tt.wantLine {
				t.Errorf("expected line %d, got %d", tt.wantLine, perr.Line)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v in chain, got %v", tt.wantErr, err)
			}
			if !strings.HasPrefix(err.Error(), "bad.yaml") {
				t.Errorf("expected file name prefix, got %q", err.Error())
			}
		})
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	in := []*Rule{
		New("HELLO", "", "", "Hi!"),
		New("BYE *", "HI", "GREETING", "<srai>BYE</srai>"),
	}

	data, err := Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	out, err := Parse(data, "learned.yaml")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(out) != 2 || out[1].That != "HI" || out[1].Template != "<srai>BYE</srai>" {
		t.Errorf("round trip lost data: %+v", out)
	}
}

func TestRule_Compiled(t *testing.T) {
	good := New("A", "", "", "x <star/>")
	node, err := good.Compiled()
	if err != nil || node == nil {
		t.Fatalf("Compiled() = %v, %v", node, err)
	}
	again, _ := good.Compiled()
	if again != node {
		t.Error("expected cached parse result")
	}

	bad := New("B", "", "", "<think>")
	if _, err := bad.Compiled(); err == nil {
		t.Error("expected malformed template error")
	}

	if got := good.String(); got != "A <that> * <topic> *" {
		t.Errorf("String() = %q", got)
	}
}
