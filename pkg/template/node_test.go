package template

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	root, err := Parse(`Hello <star index="1"/>, <UpperCase>you</UpperCase>!`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if root.Kind != KindTemplate {
		t.Fatalf("expected template root, got %v", root.Kind)
	}
	if len(root.Children) != 5 {
		t.Fatalf("expected 5 children, got %d", len(root.Children))
	}

	star := root.Children[1]
	if star.Kind != KindStar {
		t.Errorf("expected star, got %v", star.Kind)
	}
	if idx, ok := star.Attr("INDEX"); !ok || idx != "1" {
		t.Errorf("expected index attribute 1, got %q", idx)
	}

	upper := root.Children[3]
	if upper.Kind != KindUppercase {
		t.Errorf("expected case-insensitive uppercase kind, got %v", upper.Kind)
	}
	if upper.InnerText() != "you" {
		t.Errorf("unexpected inner text %q", upper.InnerText())
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []string{
		"<srai>unterminated",
		"a < b",
		"<get name='x'></set>",
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			_, err := Parse(src)
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("expected ErrMalformed, got %v", err)
			}
		})
	}
}

func TestParse_UnknownAndEntities(t *testing.T) {
	root, err := Parse(`<system>rm -rf</system> caf&eacute; &amp; co`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if root.Children[0].Kind != KindUnknown {
		t.Errorf("expected unknown kind, got %v", root.Children[0].Kind)
	}
	if got := root.Children[1].Text; got != " café & co" {
		t.Errorf("unexpected text %q", got)
	}
}

func TestRender_RoundTrip(t *testing.T) {
	src := `<condition name="mood"><li value="happy">Great &amp; good</li><li>Hm</li></condition>`
	root, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := root.InnerXML(); got != src {
		t.Errorf("InnerXML() = %q, want %q", got, src)
	}

	again, err := Parse(root.InnerXML())
	if err != nil {
		t.Fatalf("re-parse error = %v", err)
	}
	if again.String() != root.String() {
		t.Errorf("round trip changed markup: %q vs %q", again.String(), root.String())
	}
}

func TestKindFor(t *testing.T) {
	if KindFor("SRAI") != KindSrai {
		t.Error("expected SRAI to resolve case-insensitively")
	}
	if KindFor("javascript") != KindUnknown {
		t.Error("expected javascript to be unknown")
	}
	if KindSrai.String() != "srai" || KindText.String() != "#text" {
		t.Error("unexpected kind names")
	}
	if len(Kinds()) != len(kindNames) {
		t.Errorf("Kinds() returned %d kinds, want %d", len(Kinds()), len(kindNames))
	}
}

func TestChildElements(t *testing.T) {
	root, err := Parse(`<random> <li>a</li> <li>b</li> </random>`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := len(root.Children[0].ChildElements()); got != 2 {
		t.Errorf("expected 2 li elements, got %d", got)
	}
}

func TestInnerXMLFunc(t *testing.T) {
	root, err := Parse(`<category><pattern>MY DOG IS <eval><star/></eval></pattern></category>`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	got := root.InnerXMLFunc(func(n *Node) (string, bool) {
		if n.Kind == KindEval {
			return "REX & CO", true
		}
		return "", false
	})
	want := `<category><pattern>MY DOG IS REX &amp; CO</pattern></category>`
	if got != want {
		t.Errorf("InnerXMLFunc() = %q, want %q", got, want)
	}
}
