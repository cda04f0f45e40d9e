package graph

import (
	"sync"

	"mercator-hq/parley/pkg/normalize"
	"mercator-hq/parley/pkg/rules"
)

// node is one level of the tree.
type node struct {
	children   map[string]*node
	underscore *node
	star       *node
	rule       *rules.Rule
}

// child returns the child for tok, creating it if needed.
func (n *node) child(tok string) *node {
	switch tok {
	case normalize.Underscore:
		if n.underscore == nil {
			n.underscore = &node{}
		}
		return n.underscore
	case normalize.Star:
		if n.star == nil {
			n.star = &node{}
		}
		return n.star
	}

	if n.children == nil {
		n.children = make(map[string]*node)
	}
	c, ok := n.children[tok]
	if !ok {
		c = &node{}
		n.children[tok] = c
	}
	return c
}

// Graph is the pattern index shared by all sessions.
type Graph struct {
	mu   sync.RWMutex
	root *node
	size int
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{root: &node{}}
}

// Insert stores rule at the node for path, creating nodes as needed. A rule
// already stored at that node is replaced; replaced reports whether that
// happened.
func (g *Graph) Insert(path normalize.Path, rule *rules.Rule) (replaced bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := g.root
	for _, tok := range path.Tokens() {
		n = n.child(tok)
	}

	replaced = n.rule != nil
	if !replaced {
		g.size++
	}
	n.rule = rule
	return replaced
}

// Size returns the number of distinct rule paths stored.
func (g *Graph) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.size
}

// Match finds the highest-priority rule for path. The returned context holds
// the wildcard captures of each segment in left-to-right order.
func (g *Graph) Match(path normalize.Path) (*MatchContext, bool) {
	m := &MatchContext{Path: path}

	g.mu.RLock()
	rule := m.search(g.root, path.Tokens(), normalize.SegmentInput)
	g.mu.RUnlock()

	if rule == nil {
		return nil, false
	}
	m.Rule = rule
	return m, true
}

// search walks n against toks. Captures are pushed onto m as wildcards
// consume spans and popped again on backtrack, so on success m holds
// exactly the captures of the winning route.
func (m *MatchContext) search(n *node, toks []string, seg normalize.Segment) *rules.Rule {
	if len(toks) == 0 {
		return n.rule
	}

	tok := toks[0]
	if c, ok := n.children[tok]; ok {
		next := seg
		switch tok {
		case normalize.ThatToken:
			next = normalize.SegmentThat
		case normalize.TopicToken:
			next = normalize.SegmentTopic
		}
		if r := m.search(c, toks[1:], next); r != nil {
			return r
		}
	}

	if normalize.IsSeparator(tok) {
		return nil
	}

	for _, wc := range [...]*node{n.underscore, n.star} {
		if wc == nil {
			continue
		}
		for span := 1; span <= len(toks) && !normalize.IsSeparator(toks[span-1]); span++ {
			m.push(seg, toks[:span])
			if r := m.search(wc, toks[span:], seg); r != nil {
				return r
			}
			m.pop(seg)
		}
	}

	return nil
}
