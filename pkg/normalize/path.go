package normalize

import "strings"

// Path tokens with structural meaning.
const (
	// ThatToken separates the input segment from the that segment.
	ThatToken = "<THAT>"

	// TopicToken separates the that segment from the topic segment.
	TopicToken = "<TOPIC>"

	// Star is the permissive wildcard. It also stands in for an empty
	// that or topic segment, so every path has three non-empty segments.
	Star = "*"

	// Underscore is the restrictive wildcard.
	Underscore = "_"
)

// Segment identifies one of the three parts of a path.
type Segment int

const (
	SegmentInput Segment = iota
	SegmentThat
	SegmentTopic
)

// String returns the segment name.
func (s Segment) String() string {
	switch s {
	case SegmentInput:
		return "input"
	case SegmentThat:
		return "that"
	case SegmentTopic:
		return "topic"
	default:
		return "unknown"
	}
}

// Path is the canonical lookup key for one sentence.
type Path struct {
	Input []string
	That  []string
	Topic []string
}

// Tokens flattens the path into the token sequence walked by the index:
// input tokens, ThatToken, that tokens, TopicToken, topic tokens.
func (p Path) Tokens() []string {
	out := make([]string, 0, len(p.Input)+len(p.That)+len(p.Topic)+2)
	out = append(out, p.Input...)
	out = append(out, ThatToken)
	out = append(out, p.That...)
	out = append(out, TopicToken)
	out = append(out, p.Topic...)
	return out
}

// String renders the path as space-separated tokens.
func (p Path) String() string {
	return strings.Join(p.Tokens(), " ")
}

// IsSeparator reports whether tok is a segment separator.
func IsSeparator(tok string) bool {
	return tok == ThatToken || tok == TopicToken
}

// IsWildcard reports whether tok is a wildcard marker.
func IsWildcard(tok string) bool {
	return tok == Star || tok == Underscore
}
