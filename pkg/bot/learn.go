package bot

import (
	"strings"

	"mercator-hq/parley/pkg/rules"
	"mercator-hq/parley/pkg/template"
)

// learnSource marks rules created at runtime.
const learnSource = "learn"

// learnHandler inserts every category inside the element:
//
//	<learn>
//	  <category>
//	    <pattern>MY NAME IS <eval><star/></eval></pattern>
//	    <template>Hello <eval><star/></eval>.</template>
//	  </category>
//	</learn>
//
// Pattern, that and topic are evaluated. The template is kept as markup
// with each eval element replaced by its evaluated text, so the rest of it
// runs when the learned rule matches.
func learnHandler(c *Context, n *template.Node, _ string) string {
	for _, cat := range n.ChildElements() {
		if !strings.EqualFold(cat.Name, "category") {
			continue
		}
		r := c.compileCategory(cat)
		if r == nil {
			continue
		}
		if c.req.TimedOut {
			return ""
		}
		if err := c.bot.Learn(r); err != nil {
			c.bot.logger.WarnContext(c.ctx, "failed to learn rule",
				"pattern", r.Pattern,
				"error", err,
			)
		}
	}
	return ""
}

func (c *Context) compileCategory(cat *template.Node) *rules.Rule {
	var pattern, that, topic string
	var tmpl *template.Node
	for _, part := range cat.ChildElements() {
		switch strings.ToLower(part.Name) {
		case "pattern":
			pattern = strings.TrimSpace(c.EvalChildren(part))
		case "that":
			that = strings.TrimSpace(c.EvalChildren(part))
		case "topic":
			topic = strings.TrimSpace(c.EvalChildren(part))
		case "template":
			tmpl = part
		}
	}
	if pattern == "" || tmpl == nil {
		c.bot.logger.WarnContext(c.ctx, "ignoring learned category without pattern or template")
		return nil
	}

	body := tmpl.InnerXMLFunc(func(n *template.Node) (string, bool) {
		if n.Kind != template.KindEval {
			return "", false
		}
		return c.EvalChildren(n), true
	})

	r := rules.New(pattern, that, topic, body)
	r.Source = learnSource
	return r
}
