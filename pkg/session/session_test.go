package session

import (
	"testing"
	"time"
)

func testOptions() Options {
	return Options{
		Defaults:    map[string]string{"topic": "*", "name": "friend"},
		UnsetValue:  "",
		HistorySize: 3,
	}
}

func TestSession_Variables(t *testing.T) {
	s := New("u1", testOptions())

	tests := []struct {
		name string
		want string
	}{
		{"name", "friend"},
		{"topic", "*"},
		{"age", ""},
	}
	for _, tt := range tests {
		if got := s.Get(tt.name); got != tt.want {
			t.Errorf("Get(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}

	s.Set("name", "Ada")
	s.SetTopic("CATS")
	if got := s.Get("name"); got != "Ada" {
		t.Errorf("expected set value to win over default, got %q", got)
	}
	if got := s.Topic(); got != "CATS" {
		t.Errorf("Topic() = %q, want CATS", got)
	}

	vars := s.Vars()
	vars["name"] = "mutated"
	if s.Get("name") != "Ada" {
		t.Error("Vars() must return a copy")
	}
}

func TestSession_History(t *testing.T) {
	s := New("u1", testOptions())

	if s.LastOutput() != "" {
		t.Errorf("expected empty last output before any turn, got %q", s.LastOutput())
	}

	for i, out := range [][]string{
		{"One."},
		{"Two.", "Three."},
		{"Four."},
		{"Five.", "Six."},
	} {
		s.AddTurn(Turn{ID: string(rune('a' + i)), Inputs: []string{"in"}, Outputs: out})
	}

	if s.Len() != 3 {
		t.Fatalf("expected history capped at 3, got %d", s.Len())
	}
	if s.History()[0].ID != "b" {
		t.Errorf("expected oldest kept turn b, got %q", s.History()[0].ID)
	}

	tests := []struct {
		n, m int
		want string
	}{
		{1, -1, "Six."},
		{1, 1, "Five."},
		{2, 1, "Four."},
		{3, 2, "Three."},
		{4, 1, ""},
		{1, 3, ""},
		{0, 1, ""},
	}
	for _, tt := range tests {
		if got := s.Output(tt.n, tt.m); got != tt.want {
			t.Errorf("Output(%d, %d) = %q, want %q", tt.n, tt.m, got, tt.want)
		}
	}
	if got := s.LastOutput(); got != "Six." {
		t.Errorf("LastOutput() = %q, want Six.", got)
	}
	if got := s.Input(1, 1); got != "in" {
		t.Errorf("Input(1, 1) = %q, want in", got)
	}
}

func TestSession_RecordRoundTrip(t *testing.T) {
	s := New("u1", testOptions())
	s.Set("name", "Ada")
	s.SetAccepting(false)
	s.AddTurn(Turn{ID: "t1", Time: time.Now(), Inputs: []string{"hi"}, Outputs: []string{"Hello."}})

	restored := FromRecord(s.Record(), testOptions())
	if restored.ID() != "u1" || restored.Get("name") != "Ada" || restored.Accepting() {
		t.Errorf("restored session lost state: %+v", restored.Record())
	}
	if restored.LastOutput() != "Hello." {
		t.Errorf("restored LastOutput() = %q", restored.LastOutput())
	}
	if !restored.CreatedAt().Equal(s.CreatedAt()) {
		t.Errorf("CreatedAt changed: %v vs %v", restored.CreatedAt(), s.CreatedAt())
	}
}

func TestSession_BeginTurnSerializes(t *testing.T) {
	s := New("u1", testOptions())
	end := s.BeginTurn()

	acquired := make(chan struct{})
	go func() {
		defer close(acquired)
		s.BeginTurn()()
	}()

	select {
	case <-acquired:
		t.Fatal("second turn started while first was running")
	case <-time.After(20 * time.Millisecond):
	}

	end()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second turn never started")
	}
}
