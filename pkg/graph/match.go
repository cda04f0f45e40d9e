package graph

import (
	"strings"

	"mercator-hq/parley/pkg/normalize"
	"mercator-hq/parley/pkg/rules"
)

// MatchContext is the result of matching one sentence.
type MatchContext struct {
	// Rule is the matched rule.
	Rule *rules.Rule

	// Path is the path that was matched.
	Path normalize.Path

	// InputStars, ThatStars and TopicStars hold the text consumed by each
	// wildcard, in order, per segment.
	InputStars []string
	ThatStars  []string
	TopicStars []string
}

// Star returns capture index (1-based) of seg, or "" when out of range.
func (m *MatchContext) Star(seg normalize.Segment, index int) string {
	if m == nil {
		return ""
	}
	stars := m.stars(seg)
	if stars == nil || index < 1 || index > len(*stars) {
		return ""
	}
	return (*stars)[index-1]
}

// Captures returns every capture in path order: input, then that, then topic.
func (m *MatchContext) Captures() []string {
	out := make([]string, 0, len(m.InputStars)+len(m.ThatStars)+len(m.TopicStars))
	out = append(out, m.InputStars...)
	out = append(out, m.ThatStars...)
	return append(out, m.TopicStars...)
}

func (m *MatchContext) stars(seg normalize.Segment) *[]string {
	switch seg {
	case normalize.SegmentInput:
		return &m.InputStars
	case normalize.SegmentThat:
		return &m.ThatStars
	case normalize.SegmentTopic:
		return &m.TopicStars
	}
	return nil
}

func (m *MatchContext) push(seg normalize.Segment, span []string) {
	s := m.stars(seg)
	*s = append(*s, strings.Join(span, " "))
}

func (m *MatchContext) pop(seg normalize.Segment) {
	s := m.stars(seg)
	*s = (*s)[:len(*s)-1]
}
