package rules

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ruleFile is the top level of a rule file.
type ruleFile struct {
	Topic string      `yaml:"topic"`
	Rules []yaml.Node `yaml:"rules"`
}

// ruleRecord is one entry under rules.
type ruleRecord struct {
	Pattern  string `yaml:"pattern"`
	That     string `yaml:"that"`
	Topic    string `yaml:"topic"`
	Template string `yaml:"template"`
}

// Parse decodes a rule file. name labels errors and rule sources.
// Records are decoded one at a time so errors carry their line number.
func Parse(data []byte, name string) ([]*Rule, error) {
	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &ParseError{File: name, Message: "invalid YAML", Cause: err}
	}

	out := make([]*Rule, 0, len(f.Rules))
	for i := range f.Rules {
		node := &f.Rules[i]

		var rec ruleRecord
		if err := node.Decode(&rec); err != nil {
			return nil, &ParseError{File: name, Line: node.Line, Message: fmt.Sprintf("rule %d", i), Cause: err}
		}
		if strings.TrimSpace(rec.Pattern) == "" {
			return nil, &ParseError{File: name, Line: node.Line, Message: fmt.Sprintf("rule %d", i), Cause: ErrEmptyPattern}
		}

		topic := rec.Topic
		if topic == "" {
			topic = f.Topic
		}

		out = append(out, &Rule{
			Pattern:  rec.Pattern,
			That:     rec.That,
			Topic:    topic,
			Template: rec.Template,
			Source:   fmt.Sprintf("%s:%d", name, node.Line),
		})
	}

	return out, nil
}

// Marshal encodes rules in the rule file format.
func Marshal(rs []*Rule) ([]byte, error) {
	type file struct {
		Rules []ruleRecord `yaml:"rules"`
	}
	f := file{Rules: make([]ruleRecord, 0, len(rs))}
	for _, r := range rs {
		f.Rules = append(f.Rules, ruleRecord{
			Pattern:  r.Pattern,
			That:     r.That,
			Topic:    r.Topic,
			Template: r.Template,
		})
	}
	return yaml.Marshal(f)
}
