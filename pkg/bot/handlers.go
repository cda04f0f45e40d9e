package bot

import (
	"strconv"
	"strings"

	"github.com/ncruces/go-strftime"

	"mercator-hq/parley/pkg/normalize"
	"mercator-hq/parley/pkg/session"
	"mercator-hq/parley/pkg/template"
)

// defaultDateFormat is used by date elements without a format attribute.
const defaultDateFormat = "%c"

// defaultHandlers returns the built-in element behaviours. Kinds missing
// here, and unknown elements, evaluate to their literal inner text.
func defaultHandlers() map[template.Kind]Handler {
	cf := func(fn HandlerFunc) Handler { return Handler{Strategy: ChildrenFirst, Eval: fn} }
	tf := func(fn HandlerFunc) Handler { return Handler{Strategy: TransformFirst, Eval: fn} }

	return map[template.Kind]Handler{
		template.KindStar:      cf(starHandler(normalize.SegmentInput)),
		template.KindThatStar:  cf(starHandler(normalize.SegmentThat)),
		template.KindTopicStar: cf(starHandler(normalize.SegmentTopic)),
		template.KindThat:      cf(thatHandler),
		template.KindInput:     cf(inputHandler),

		template.KindGet:     cf(getHandler),
		template.KindSet:     cf(setHandler),
		template.KindBot:     cf(botHandler),
		template.KindID:      cf(func(c *Context, _ *template.Node, _ string) string { return c.Session().ID() }),
		template.KindSize:    cf(func(c *Context, _ *template.Node, _ string) string { return strconv.Itoa(c.bot.Size()) }),
		template.KindVersion: cf(func(c *Context, _ *template.Node, _ string) string { return c.bot.version }),
		template.KindDate:    cf(dateHandler),

		template.KindUppercase: cf(func(c *Context, _ *template.Node, text string) string { return c.bot.norm.Upper(text) }),
		template.KindLowercase: cf(func(c *Context, _ *template.Node, text string) string { return c.bot.norm.Lower(text) }),
		template.KindFormal:    cf(func(c *Context, _ *template.Node, text string) string { return c.bot.norm.Title(text) }),
		template.KindSentence:  cf(func(c *Context, _ *template.Node, text string) string { return c.bot.norm.Sentence(text) }),
		template.KindPerson:    cf(func(c *Context, n *template.Node, text string) string { return c.bot.subs.Person.Apply(starDefault(c, n, text)) }),
		template.KindPerson2:   cf(func(c *Context, n *template.Node, text string) string { return c.bot.subs.Person2.Apply(starDefault(c, n, text)) }),
		template.KindGender:    cf(func(c *Context, n *template.Node, text string) string { return c.bot.subs.Gender.Apply(starDefault(c, n, text)) }),
		template.KindNormalize: cf(func(c *Context, _ *template.Node, text string) string { return c.bot.subs.Substitution.Apply(text) }),

		template.KindThink:  cf(func(*Context, *template.Node, string) string { return "" }),
		template.KindGossip: cf(gossipHandler),

		template.KindCondition: tf(conditionHandler),
		template.KindRandom:    tf(randomHandler),
		template.KindSrai:      tf(sraiHandler),
		template.KindSr:        tf(srHandler),
		template.KindLearn:     tf(learnHandler),

		template.KindEval: cf(concat),
		template.KindLi:   cf(concat),
	}
}

func concat(_ *Context, _ *template.Node, text string) string {
	return text
}

func starHandler(seg normalize.Segment) HandlerFunc {
	return func(c *Context, n *template.Node, _ string) string {
		return c.Star(seg, intAttr(n, "index", 1))
	}
}

// thatHandler returns a sentence of a previous response. index is "n" or
// "n,m": response n back (1 is the latest) and sentence m of it. Without
// m the last sentence is used.
func thatHandler(c *Context, n *template.Node, _ string) string {
	turn, sentence := 1, -1
	if v, ok := n.Attr("index"); ok {
		first, second, hasSecond := strings.Cut(v, ",")
		if i, err := strconv.Atoi(strings.TrimSpace(first)); err == nil {
			turn = i
		}
		if hasSecond {
			if i, err := strconv.Atoi(strings.TrimSpace(second)); err == nil {
				sentence = i
			}
		}
	}
	return c.Session().Output(turn, sentence)
}

// inputHandler returns the index-th most recent input sentence, counting
// the current turn's sentences first and then earlier turns.
func inputHandler(c *Context, n *template.Node, _ string) string {
	return recentInput(c.req.inputs, c.Session().History(), intAttr(n, "index", 1))
}

func recentInput(current []string, history []session.Turn, index int) string {
	if index < 1 {
		return ""
	}
	if index <= len(current) {
		return current[len(current)-index]
	}
	index -= len(current)
	for i := len(history) - 1; i >= 0; i-- {
		inputs := history[i].Inputs
		if index <= len(inputs) {
			return inputs[len(inputs)-index]
		}
		index -= len(inputs)
	}
	return ""
}

func getHandler(c *Context, n *template.Node, _ string) string {
	name, ok := n.Attr("name")
	if !ok {
		return ""
	}
	return c.Session().Get(name)
}

// setHandler stores the element's text and returns it. Setting "topic"
// changes the topic used to build later paths.
func setHandler(c *Context, n *template.Node, text string) string {
	name, ok := n.Attr("name")
	if !ok {
		return text
	}
	value := strings.TrimSpace(text)
	if strings.EqualFold(name, session.TopicVar) {
		c.Session().SetTopic(value)
	} else {
		c.Session().Set(name, value)
	}
	return text
}

func botHandler(c *Context, n *template.Node, _ string) string {
	name, ok := n.Attr("name")
	if !ok {
		return ""
	}
	props := c.bot.cfg.Bot.Properties
	if v, ok := props[name]; ok {
		return v
	}
	return props[strings.ToLower(name)]
}

func dateHandler(c *Context, n *template.Node, _ string) string {
	format, ok := n.Attr("format")
	if !ok || format == "" {
		format = defaultDateFormat
	}
	return strftime.Format(format, c.bot.now())
}

func gossipHandler(c *Context, _ *template.Node, text string) string {
	c.bot.logger.InfoContext(c.ctx, "gossip", "text", strings.TrimSpace(text))
	return ""
}

// starDefault stands an empty element in for <star/>.
func starDefault(c *Context, n *template.Node, text string) string {
	if len(n.Children) == 0 {
		return c.Star(normalize.SegmentInput, 1)
	}
	return text
}

func sraiHandler(c *Context, n *template.Node, _ string) string {
	text := c.EvalChildren(n)
	if c.req.TimedOut {
		return ""
	}
	return c.Srai(text)
}

func srHandler(c *Context, _ *template.Node, _ string) string {
	star := c.Star(normalize.SegmentInput, 1)
	if star == "" {
		return ""
	}
	return c.Srai(star)
}

func randomHandler(c *Context, n *template.Node, _ string) string {
	items := listItems(n)
	if len(items) == 0 {
		return ""
	}
	return c.EvalChildren(items[c.bot.intn(len(items))])
}

// conditionHandler supports the three condition forms:
//
//	<condition name="mood" value="HAPPY">...</condition>
//	<condition name="mood"><li value="HAPPY">...</li><li>...</li></condition>
//	<condition><li name="mood" value="HAPPY">...</li><li>...</li></condition>
//
// The first item whose variable matches its value pattern is evaluated. An
// item without a value is the default.
func conditionHandler(c *Context, n *template.Node, _ string) string {
	name, hasName := n.Attr("name")
	if value, ok := n.Attr("value"); ok {
		if hasName && c.bot.valueMatches(c.Session().Get(name), value) {
			return c.EvalChildren(n)
		}
		return ""
	}

	for _, li := range listItems(n) {
		value, hasValue := li.Attr("value")
		if !hasValue {
			return c.EvalChildren(li)
		}
		liName, ok := li.Attr("name")
		if !ok {
			liName, ok = name, hasName
		}
		if ok && c.bot.valueMatches(c.Session().Get(liName), value) {
			return c.EvalChildren(li)
		}
	}
	return ""
}

// valueMatches compares a variable with a condition value. Both are
// normalized; * and _ in the value match one or more words.
func (b *Bot) valueMatches(actual, pattern string) bool {
	return globTokens(b.norm.Tokens(actual), b.norm.PatternTokens(pattern))
}

func globTokens(tokens, pattern []string) bool {
	if len(pattern) == 0 {
		return len(tokens) == 0
	}
	if !normalize.IsWildcard(pattern[0]) {
		return len(tokens) > 0 && tokens[0] == pattern[0] && globTokens(tokens[1:], pattern[1:])
	}
	for span := 1; span <= len(tokens); span++ {
		if globTokens(tokens[span:], pattern[1:]) {
			return true
		}
	}
	return false
}

func listItems(n *template.Node) []*template.Node {
	var items []*template.Node
	for _, c := range n.ChildElements() {
		if c.Kind == template.KindLi {
			items = append(items, c)
		}
	}
	return items
}

func intAttr(n *template.Node, name string, def int) int {
	v, ok := n.Attr(name)
	if !ok {
		return def
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return i
}
