package template

import "strings"

// Kind is the closed set of template node variants. Element names resolve
// to a Kind case-insensitively at parse time; names outside the set resolve
// to KindUnknown.
type Kind int

const (
	KindText Kind = iota
	KindUnknown
	KindTemplate

	// Captures and history
	KindStar
	KindThatStar
	KindTopicStar
	KindThat
	KindInput

	// Variables and introspection
	KindGet
	KindSet
	KindBot
	KindID
	KindSize
	KindVersion
	KindDate

	// Text transforms
	KindUppercase
	KindLowercase
	KindFormal
	KindSentence
	KindPerson
	KindPerson2
	KindGender
	KindNormalize

	// Side effects
	KindThink
	KindGossip

	// Control
	KindCondition
	KindRandom
	KindLi
	KindSrai
	KindSr
	KindLearn
	KindEval
)

var kindNames = map[string]Kind{
	"template":  KindTemplate,
	"star":      KindStar,
	"thatstar":  KindThatStar,
	"topicstar": KindTopicStar,
	"that":      KindThat,
	"input":     KindInput,
	"get":       KindGet,
	"set":       KindSet,
	"bot":       KindBot,
	"id":        KindID,
	"size":      KindSize,
	"version":   KindVersion,
	"date":      KindDate,
	"uppercase": KindUppercase,
	"lowercase": KindLowercase,
	"formal":    KindFormal,
	"sentence":  KindSentence,
	"person":    KindPerson,
	"person2":   KindPerson2,
	"gender":    KindGender,
	"normalize": KindNormalize,
	"think":     KindThink,
	"gossip":    KindGossip,
	"condition": KindCondition,
	"random":    KindRandom,
	"li":        KindLi,
	"srai":      KindSrai,
	"sr":        KindSr,
	"learn":     KindLearn,
	"eval":      KindEval,
}

// KindFor resolves an element name.
func KindFor(name string) Kind {
	if k, ok := kindNames[strings.ToLower(name)]; ok {
		return k
	}
	return KindUnknown
}

// String returns the canonical element name, "#text" or "#unknown".
func (k Kind) String() string {
	switch k {
	case KindText:
		return "#text"
	case KindUnknown:
		return "#unknown"
	}
	for name, kind := range kindNames {
		if kind == k {
			return name
		}
	}
	return "#unknown"
}

// Kinds returns every element kind with a registered name.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kindNames))
	for k := KindTemplate; k <= KindEval; k++ {
		out = append(out, k)
	}
	return out
}
