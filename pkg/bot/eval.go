package bot

import (
	"context"
	"strings"

	"mercator-hq/parley/pkg/graph"
	"mercator-hq/parley/pkg/normalize"
	"mercator-hq/parley/pkg/session"
	"mercator-hq/parley/pkg/template"
)

// Strategy selects how an element's children are evaluated.
type Strategy int

const (
	// ChildrenFirst evaluates every child, then hands the concatenated
	// text to the handler.
	ChildrenFirst Strategy = iota

	// TransformFirst hands the element to the handler unevaluated; the
	// handler decides which children, if any, to evaluate.
	TransformFirst
)

// HandlerFunc evaluates one element. text holds the evaluated children for
// ChildrenFirst handlers and is empty for TransformFirst handlers.
type HandlerFunc func(c *Context, n *template.Node, text string) string

// Handler is the behaviour registered for one element kind.
type Handler struct {
	Strategy Strategy
	Eval     HandlerFunc
}

// Context is the evaluation state of one matched sentence.
type Context struct {
	ctx   context.Context
	bot   *Bot
	req   *Request
	match *graph.MatchContext
	depth int
}

// Session returns the turn's session.
func (c *Context) Session() *session.Session {
	return c.req.Session
}

// Request returns the turn in flight.
func (c *Context) Request() *Request {
	return c.req
}

// Match returns the match being evaluated.
func (c *Context) Match() *graph.MatchContext {
	return c.match
}

// Star returns capture index (1-based) of seg.
func (c *Context) Star(seg normalize.Segment, index int) string {
	return c.match.Star(seg, index)
}

// Eval evaluates n. Every call first checks the turn's budget; once it is
// spent the turn is marked timed out and nothing more is evaluated. A
// children-first element whose children ran out of budget still transforms
// the text they composed.
func (c *Context) Eval(n *template.Node) string {
	if c.checkTimeout() {
		return ""
	}

	switch n.Kind {
	case template.KindText:
		return n.Text
	case template.KindTemplate:
		return c.EvalChildren(n)
	}

	h, ok := c.bot.handlers[n.Kind]
	if !ok || h.Eval == nil {
		return n.InnerText()
	}

	if h.Strategy == TransformFirst {
		return h.Eval(c, n, "")
	}

	return h.Eval(c, n, c.EvalChildren(n))
}

// EvalChildren evaluates the children of n in order and concatenates the
// results. Once the budget is spent it stops after the current child and
// returns everything composed so far, including that child's partial text.
func (c *Context) EvalChildren(n *template.Node) string {
	var sb strings.Builder
	for _, child := range n.Children {
		sb.WriteString(c.Eval(child))
		if c.req.TimedOut {
			break
		}
	}
	return sb.String()
}

// Srai runs text through the whole pipeline within the same turn and
// returns the joined output.
func (c *Context) Srai(text string) string {
	return c.bot.reformulate(c.ctx, c.req, text, c.depth+1)
}

// checkTimeout marks the request timed out when its budget is spent.
func (c *Context) checkTimeout() bool {
	if c.req.TimedOut {
		return true
	}
	if c.req.expired(c.bot.now()) {
		c.req.TimedOut = true
		return true
	}
	return false
}
