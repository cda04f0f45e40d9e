// Package rules defines the rule record, parses rule files, and supplies
// rules to the engine from files or memory, optionally watching files for
// changes.
package rules

import (
	"fmt"
	"sync"

	"mercator-hq/parley/pkg/template"
)

// Rule is one pattern/response unit. Its fields are fixed once the rule is
// handed to the engine; the parsed template is cached on first use.
type Rule struct {
	// Pattern is the input pattern, e.g. "HELLO *".
	Pattern string

	// That is the pattern for the bot's previous output sentence.
	// Empty means "*".
	That string

	// Topic is the pattern for the session topic. Empty means "*".
	Topic string

	// Template is the response markup.
	Template string

	// Source names where the rule came from: "file:line", "learn" or "memory".
	Source string

	once   sync.Once
	parsed *template.Node
	err    error
}

// New returns a rule with the given patterns and template.
func New(pattern, that, topic, tmpl string) *Rule {
	return &Rule{Pattern: pattern, That: that, Topic: topic, Template: tmpl}
}

// Compiled returns the parsed template. Parsing happens once; a malformed
// template yields the same error on every call.
func (r *Rule) Compiled() (*template.Node, error) {
	r.once.Do(func() {
		r.parsed, r.err = template.Parse(r.Template)
	})
	return r.parsed, r.err
}

// String identifies the rule in logs.
func (r *Rule) String() string {
	that, topic := r.That, r.Topic
	if that == "" {
		that = "*"
	}
	if topic == "" {
		topic = "*"
	}
	return fmt.Sprintf("%s <that> %s <topic> %s", r.Pattern, that, topic)
}
