// Package bot is the conversation engine. A Bot holds the rule graph shared
// by every session, splits each submitted turn into sentences, matches each
// sentence against the graph and evaluates the matched template.
//
// # Turns
//
// Submit evaluates one turn and always returns a *Result. A sentence that
// matches nothing, or whose template is malformed, contributes no output and
// the remaining sentences still run. Every turn has a time budget
// (bot.timeout) shared by all nested reformulations; once an element finds
// the budget spent, evaluation stops, the partial output of the current
// sentence is kept and the rest of the turn is skipped.
//
//	b, err := bot.New(cfg, bot.Options{Logger: logger})
//	if err != nil {
//		return err
//	}
//	if err := b.LoadRules(ctx, rules.NewFileSource(cfg.Rules.Paths, 0, logger)); err != nil {
//		return err
//	}
//	res := b.Submit(ctx, "Hello there. What is your name?", "user-1")
//	fmt.Println(res.Output())
//
// # Elements
//
// Template elements are dispatched on their template.Kind through a table
// of Handlers. ChildrenFirst handlers receive the evaluated text of their
// children; TransformFirst handlers (condition, random, srai, sr, learn)
// choose what to evaluate themselves. Unknown elements evaluate to their
// literal inner text. Handle replaces the behaviour of a kind.
//
// # Rules
//
// Load and LoadRules build a new graph aside and swap it in. Rules learned
// at runtime go straight into the live graph and are replayed on every
// later load. There is no recursion limit for srai; a reformulation loop
// ends when the turn's budget runs out.
package bot
