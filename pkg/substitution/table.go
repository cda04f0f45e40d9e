// Package substitution implements the find/replace tables used by the
// person, person2, gender and normalize template elements.
package substitution

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Pair is one find/replace entry.
type Pair struct {
	Find    string `yaml:"find"`
	Replace string `yaml:"replace"`
}

// Table applies its pairs in a single left-to-right pass. At each word
// boundary the longest matching find string wins; replaced text is never
// rescanned, so swaps such as "I"/"you" do not undo each other.
// Matching is case-insensitive. A Table is immutable and safe for
// concurrent use.
type Table struct {
	pairs []Pair
}

// NewTable builds a table from pairs. Later duplicates of a find string
// (compared case-insensitively) replace earlier ones.
func NewTable(pairs []Pair) *Table {
	byKey := make(map[string]int, len(pairs))
	var kept []Pair
	for _, p := range pairs {
		find := strings.TrimSpace(p.Find)
		if find == "" {
			continue
		}
		entry := Pair{Find: find, Replace: strings.TrimSpace(p.Replace)}
		key := strings.ToLower(find)
		if i, ok := byKey[key]; ok {
			kept[i] = entry
			continue
		}
		byKey[key] = len(kept)
		kept = append(kept, entry)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return utf8.RuneCountInString(kept[i].Find) > utf8.RuneCountInString(kept[j].Find)
	})

	return &Table{pairs: kept}
}

// Len returns the number of entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.pairs)
}

// Apply returns text with every matching find string replaced.
func (t *Table) Apply(text string) string {
	if t.Len() == 0 || text == "" {
		return text
	}

	var sb strings.Builder
	sb.Grow(len(text))

	i := 0
	for i < len(text) {
		if atBoundary(text, i) {
			if p, n := t.matchAt(text, i); n > 0 {
				sb.WriteString(p.Replace)
				i += n
				continue
			}
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		sb.WriteString(text[i : i+size])
		i += size
	}
	return sb.String()
}

// matchAt returns the longest pair whose find string matches text at i and
// ends on a word boundary, with the number of bytes consumed.
func (t *Table) matchAt(text string, i int) (Pair, int) {
	rest := text[i:]
	for _, p := range t.pairs {
		n := prefixFold(rest, p.Find)
		if n == 0 {
			continue
		}
		if endsAtBoundary(rest, n) {
			return p, n
		}
	}
	return Pair{}, 0
}

// prefixFold reports how many bytes of s match prefix case-insensitively,
// or 0 when s does not start with prefix.
func prefixFold(s, prefix string) int {
	si := 0
	for _, pr := range prefix {
		if si >= len(s) {
			return 0
		}
		sr, size := utf8.DecodeRuneInString(s[si:])
		if unicode.ToLower(sr) != unicode.ToLower(pr) {
			return 0
		}
		si += size
	}
	return si
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\''
}

// atBoundary reports whether a word could start at text[i].
func atBoundary(text string, i int) bool {
	if i == 0 {
		return true
	}
	prev, _ := utf8.DecodeLastRuneInString(text[:i])
	cur, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordRune(prev) || !isWordRune(cur)
}

// endsAtBoundary reports whether a match of n bytes at the start of rest
// ends where a word ends.
func endsAtBoundary(rest string, n int) bool {
	if n >= len(rest) {
		return true
	}
	last, _ := utf8.DecodeLastRuneInString(rest[:n])
	next, _ := utf8.DecodeRuneInString(rest[n:])
	return !isWordRune(last) || !isWordRune(next)
}
