package bot

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"mercator-hq/parley/pkg/rules"
	"mercator-hq/parley/pkg/session"
)

func TestHandlers(t *testing.T) {
	tests := []struct {
		name  string
		rules []*rules.Rule
		turns []string
		want  string
	}{
		{
			name:  "star",
			rules: []*rules.Rule{rule("MY NAME IS *", "Hi <star/>!")},
			turns: []string{"my name is bob"},
			want:  "Hi BOB!",
		},
		{
			name:  "star index",
			rules: []*rules.Rule{rule("* LIKES *", `<star index="2"/> by <star/>`)},
			turns: []string{"alice likes cats"},
			want:  "CATS by ALICE",
		},
		{
			name: "thatstar",
			rules: []*rules.Rule{
				rule("ASK", "Do you like cats?"),
				rules.New("YES", "DO YOU LIKE *", "", "I like <thatstar/> too"),
			},
			turns: []string{"ask", "yes"},
			want:  "I like CATS too",
		},
		{
			name: "topicstar",
			rules: []*rules.Rule{
				rule("PETS", `<think><set name="topic">pets cats</set></think>ok`),
				rules.New("WHICH", "", "PETS *", "<topicstar/>"),
			},
			turns: []string{"pets", "which"},
			want:  "CATS",
		},
		{
			name: "that",
			rules: []*rules.Rule{
				rule("TWO", "First one. Second one."),
				rule("REPEAT", "<that/>"),
			},
			turns: []string{"two", "repeat"},
			want:  "Second one",
		},
		{
			name: "that index",
			rules: []*rules.Rule{
				rule("TWO", "First one. Second one."),
				rule("WHICH", `<that index="1,1"/>`),
				rule("BEFORE", `<that index="2,1"/>`),
			},
			turns: []string{"two", "which", "before"},
			want:  "First one",
		},
		{
			name: "input in the same turn",
			rules: []*rules.Rule{
				rule("HELLO THERE", "Hi"),
				rule("ECHO", `<input index="2"/>`),
			},
			turns: []string{"hello there. echo"},
			want:  "Hi hello there",
		},
		{
			name: "input from an earlier turn",
			rules: []*rules.Rule{
				rule("*", "ok"),
				rule("RECALL", `<input index="3"/>`),
			},
			turns: []string{"first thing. second thing", "recall"},
			want:  "first thing",
		},
		{
			name: "set and get",
			rules: []*rules.Rule{
				rule("CALL ME *", `<set name="name"><star/></set> it is`),
				rule("WHO AM I", `You are <get name="name"/>`),
			},
			turns: []string{"call me bob", "who am i"},
			want:  "You are BOB",
		},
		{
			name:  "get unset",
			rules: []*rules.Rule{rule("WHO AM I", `You are <get name="name"/>.`)},
			turns: []string{"who am i"},
			want:  "You are .",
		},
		{
			name:  "bot property",
			rules: []*rules.Rule{rule("NAME", `<bot name="NAME"/> from <bot name="location"/>`)},
			turns: []string{"name"},
			want:  "Parley from Unknown",
		},
		{
			name:  "id size version",
			rules: []*rules.Rule{rule("ABOUT", "<id/> <size/> <version/>")},
			turns: []string{"about"},
			want:  "u1 1 1.2.3",
		},
		{
			name:  "date",
			rules: []*rules.Rule{rule("TODAY", `<date format="%Y-%m-%d %H:%M"/>`)},
			turns: []string{"today"},
			want:  "2024-03-05 14:30",
		},
		{
			name:  "case transforms",
			rules: []*rules.Rule{rule("CASE", "<uppercase>up</uppercase> <lowercase>DOWN</lowercase> <formal>hello wORLD</formal>")},
			turns: []string{"case"},
			want:  "UP down Hello World",
		},
		{
			name:  "sentence",
			rules: []*rules.Rule{rule("SENT", "<sentence>hello there. how are you</sentence>")},
			turns: []string{"sent"},
			want:  "Hello there. How are you",
		},
		{
			name:  "person",
			rules: []*rules.Rule{rule("I SAY *", "<person><lowercase><star/></lowercase></person>")},
			turns: []string{"i say my dog"},
			want:  "your dog",
		},
		{
			name:  "empty person uses star",
			rules: []*rules.Rule{rule("I SAY *", "<person/>")},
			turns: []string{"i say my dog"},
			want:  "your DOG",
		},
		{
			name:  "person2",
			rules: []*rules.Rule{rule("P2", "<person2>I am here</person2>")},
			turns: []string{"p2"},
			want:  "he or she is here",
		},
		{
			name:  "gender",
			rules: []*rules.Rule{rule("G", "<gender>he said</gender>")},
			turns: []string{"g"},
			want:  "she said",
		},
		{
			name:  "normalize",
			rules: []*rules.Rule{rule("N", "<normalize>don't stop</normalize>")},
			turns: []string{"n"},
			want:  "do not stop",
		},
		{
			name:  "think",
			rules: []*rules.Rule{rule("T", `<think><set name="x">y</set>hidden</think>shown <get name="x"/>`)},
			turns: []string{"t"},
			want:  "shown y",
		},
		{
			name: "condition single",
			rules: []*rules.Rule{rule("MOOD *",
				`<think><set name="mood"><star/></set></think><condition name="mood" value="happy">Great</condition>`)},
			turns: []string{"mood happy"},
			want:  "Great",
		},
		{
			name: "condition single no match",
			rules: []*rules.Rule{rule("MOOD *",
				`<think><set name="mood"><star/></set></think><condition name="mood" value="happy">Great</condition>`)},
			turns: []string{"mood sad"},
			want:  "",
		},
		{
			name: "condition multi wildcard",
			rules: []*rules.Rule{rule("MOOD *", `<think><set name="mood"><star/></set></think><condition name="mood">
				<li value="HAPPY">Great</li>
				<li value="VERY *">Strong feelings</li>
				<li>Hmm</li>
			</condition>`)},
			turns: []string{"mood very sad"},
			want:  "Strong feelings",
		},
		{
			name: "condition multi default",
			rules: []*rules.Rule{rule("MOOD *", `<think><set name="mood"><star/></set></think><condition name="mood">
				<li value="HAPPY">Great</li>
				<li>Hmm</li>
			</condition>`)},
			turns: []string{"mood sad"},
			want:  "Hmm",
		},
		{
			name: "condition list",
			rules: []*rules.Rule{rule("CHECK", `<think><set name="a">yes</set></think><condition>
				<li name="b" value="yes">b</li>
				<li name="a" value="yes">a</li>
				<li>neither</li>
			</condition>`)},
			turns: []string{"check"},
			want:  "a",
		},
		{
			name:  "random",
			rules: []*rules.Rule{rule("PICK", "<random><li>one</li><li>two</li><li>three</li></random>")},
			turns: []string{"pick"},
			want:  "two",
		},
		{
			name: "srai with evaluated text",
			rules: []*rules.Rule{
				rule("GREET *", "Hello <star/>"),
				rule("HI *", "<srai>GREET <star/></srai>"),
			},
			turns: []string{"hi bob"},
			want:  "Hello BOB",
		},
		{
			name: "sr",
			rules: []*rules.Rule{
				rule("HELLO", "Hi there"),
				rule("SAY *", "<sr/>"),
			},
			turns: []string{"say hello"},
			want:  "Hi there",
		},
		{
			name:  "unknown element passes text through",
			rules: []*rules.Rule{rule("U", "<foo>bar <b>baz</b></foo> <system>ls</system>")},
			turns: []string{"u"},
			want:  "bar baz ls",
		},
		{
			name:  "eval outside learn",
			rules: []*rules.Rule{rule("E", "<eval>x</eval>")},
			turns: []string{"e"},
			want:  "x",
		},
		{
			name:  "case-insensitive element names",
			rules: []*rules.Rule{rule("UP", "<UpperCase>loud</UpperCase>")},
			turns: []string{"up"},
			want:  "LOUD",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBot(t, tt.rules...)
			b.now = newFakeClock().Now
			b.intn = func(int) int { return 1 }

			var got string
			for _, turn := range tt.turns {
				got = b.Submit(context.Background(), turn, "u1").Output()
			}
			if got != tt.want {
				t.Errorf("Output() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGossip_Logs(t *testing.T) {
	var buf bytes.Buffer
	b, err := New(testConfig(), Options{Logger: slog.New(slog.NewTextHandler(&buf, nil))})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := b.Load([]*rules.Rule{rule("TELL", "<gossip>a secret</gossip>told")}); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := b.Submit(context.Background(), "tell", "u1").Output(); got != "told" {
		t.Errorf("Output() = %q, want told", got)
	}
	if !strings.Contains(buf.String(), `text="a secret"`) {
		t.Errorf("expected gossip in log, got %q", buf.String())
	}
}

func TestSet_TopicVariable(t *testing.T) {
	b := newTestBot(t, rule("TOPIC", `<think><set name="TOPIC"> birds </set></think>`))

	b.Submit(context.Background(), "topic", "u1")

	s, err := b.Store().Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if s.Topic() != "birds" {
		t.Errorf("Topic() = %q, want birds", s.Topic())
	}
}

func TestRecentInput(t *testing.T) {
	history := []session.Turn{
		{Inputs: []string{"a", "b"}},
		{Inputs: []string{"c"}},
	}
	current := []string{"d", "e"}

	tests := []struct {
		index int
		want  string
	}{
		{0, ""},
		{1, "e"},
		{2, "d"},
		{3, "c"},
		{4, "b"},
		{5, "a"},
		{6, ""},
	}
	for _, tt := range tests {
		if got := recentInput(current, history, tt.index); got != tt.want {
			t.Errorf("recentInput(%d) = %q, want %q", tt.index, got, tt.want)
		}
	}
}

func TestGlobTokens(t *testing.T) {
	tests := []struct {
		tokens  string
		pattern string
		want    bool
	}{
		{"HAPPY", "HAPPY", true},
		{"HAPPY", "SAD", false},
		{"VERY SAD", "VERY *", true},
		{"VERY", "VERY *", false},
		{"A B C", "A _ C", true},
		{"A B D C", "* C", true},
		{"", "*", false},
		{"", "", true},
	}
	for _, tt := range tests {
		got := globTokens(strings.Fields(tt.tokens), strings.Fields(tt.pattern))
		if got != tt.want {
			t.Errorf("globTokens(%q, %q) = %v, want %v", tt.tokens, tt.pattern, got, tt.want)
		}
	}
}
