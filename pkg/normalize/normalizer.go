package normalize

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// sentenceBreak replaces every configured splitter before splitting.
const sentenceBreak = "\x1f"

// Options configures a Normalizer.
type Options struct {
	// StripPattern matches characters outside the allow-set.
	StripPattern string

	// Splitters are the sentence delimiters.
	Splitters []string

	// MaxThatSize caps the that-context length in characters.
	MaxThatSize int

	// Locale is the BCP 47 tag used for case folding.
	Locale string
}

// Normalizer splits raw text into sentences and reduces sentences to paths.
// It holds no mutable state and is safe for concurrent use.
type Normalizer struct {
	strip    *regexp.Regexp
	splitter *strings.Replacer
	maxThat  int
	tag      language.Tag
}

// New compiles opts into a Normalizer.
func New(opts Options) (*Normalizer, error) {
	strip, err := regexp.Compile(opts.StripPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid strip pattern %q: %w", opts.StripPattern, err)
	}
	if len(opts.Splitters) == 0 {
		return nil, fmt.Errorf("at least one sentence splitter is required")
	}

	tag, err := language.Parse(opts.Locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", opts.Locale, err)
	}

	pairs := make([]string, 0, len(opts.Splitters)*2)
	for _, s := range opts.Splitters {
		pairs = append(pairs, s, sentenceBreak)
	}

	maxThat := opts.MaxThatSize
	if maxThat <= 0 {
		maxThat = 256
	}

	return &Normalizer{
		strip:    strip,
		splitter: strings.NewReplacer(pairs...),
		maxThat:  maxThat,
		tag:      tag,
	}, nil
}

// Sentences splits raw text on the configured delimiters and returns the
// trimmed, non-empty pieces in order.
func (n *Normalizer) Sentences(raw string) []string {
	parts := strings.Split(n.splitter.Replace(raw), sentenceBreak)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Tokens reduces user text to canonical tokens: characters outside the
// allow-set become spaces, whitespace collapses, and the result is
// upper-cased for the configured locale.
func (n *Normalizer) Tokens(text string) []string {
	stripped := n.strip.ReplaceAllString(text, " ")
	return strings.Fields(n.Upper(stripped))
}

// PatternTokens reduces a rule pattern to tokens. Wildcard markers that
// stand alone are kept; everything else is normalized like user text.
func (n *Normalizer) PatternTokens(pattern string) []string {
	var out []string
	for _, field := range strings.Fields(pattern) {
		if IsWildcard(field) {
			out = append(out, field)
			continue
		}
		out = append(out, n.Tokens(field)...)
	}
	return out
}

// Path builds the lookup key for a sentence. that is the previous bot
// output sentence and topic the session topic; either may be empty.
// ok is false when the sentence normalizes to nothing.
func (n *Normalizer) Path(sentence, that, topic string) (path Path, ok bool) {
	input := n.Tokens(sentence)
	if len(input) == 0 {
		return Path{}, false
	}

	thatTokens := n.Tokens(that)
	if len(thatTokens) == 0 || len(strings.Join(thatTokens, " ")) > n.maxThat {
		thatTokens = []string{Star}
	}

	topicTokens := n.Tokens(topic)
	if len(topicTokens) == 0 {
		topicTokens = []string{Star}
	}

	return Path{Input: input, That: thatTokens, Topic: topicTokens}, true
}

// PatternPath builds the insertion key for a rule. Empty that or topic
// patterns become Star. ok is false when the input pattern is empty.
func (n *Normalizer) PatternPath(input, that, topic string) (path Path, ok bool) {
	in := n.PatternTokens(input)
	if len(in) == 0 {
		return Path{}, false
	}

	th := n.PatternTokens(that)
	if len(th) == 0 {
		th = []string{Star}
	}
	tp := n.PatternTokens(topic)
	if len(tp) == 0 {
		tp = []string{Star}
	}

	return Path{Input: in, That: th, Topic: tp}, true
}

// Upper upper-cases s for the configured locale.
func (n *Normalizer) Upper(s string) string {
	return cases.Upper(n.tag).String(s)
}

// Lower lower-cases s for the configured locale.
func (n *Normalizer) Lower(s string) string {
	return cases.Lower(n.tag).String(s)
}

// Title capitalizes the first letter of every word and lower-cases the rest.
func (n *Normalizer) Title(s string) string {
	return cases.Title(n.tag).String(s)
}

// Sentence capitalizes the first letter of every sentence in s and leaves
// the remaining characters alone.
func (n *Normalizer) Sentence(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))

	upper := cases.Upper(n.tag)
	start := true
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		chunk := s[:size]
		s = s[size:]

		switch {
		case start && unicode.IsLetter(r):
			sb.WriteString(upper.String(chunk))
			start = false
		case n.isSplitter(chunk):
			sb.WriteString(chunk)
			start = true
		default:
			if !unicode.IsSpace(r) {
				start = false
			}
			sb.WriteString(chunk)
		}
	}
	return sb.String()
}

func (n *Normalizer) isSplitter(chunk string) bool {
	return n.splitter.Replace(chunk) == sentenceBreak
}

// Locale returns the configured locale tag.
func (n *Normalizer) Locale() language.Tag {
	return n.tag
}
