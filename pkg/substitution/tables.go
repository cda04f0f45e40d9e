package substitution

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tables groups the four substitution tables.
type Tables struct {
	// Substitution is the generic text table used by the normalize element.
	Substitution *Table

	// Person swaps first and second person ("I" <-> "you").
	Person *Table

	// Person2 swaps first and third person ("I" <-> "he or she").
	Person2 *Table

	// Gender swaps masculine and feminine pronouns.
	Gender *Table
}

// fileFormat is the on-disk layout of a substitutions file.
type fileFormat struct {
	Substitution []Pair `yaml:"substitution"`
	Person       []Pair `yaml:"person"`
	Person2      []Pair `yaml:"person2"`
	Gender       []Pair `yaml:"gender"`
}

// Defaults returns the built-in English tables.
func Defaults() *Tables {
	return &Tables{
		Substitution: NewTable(defaultSubstitution),
		Person:       NewTable(defaultPerson),
		Person2:      NewTable(defaultPerson2),
		Gender:       NewTable(defaultGender),
	}
}

// LoadFile reads a YAML substitutions file. Tables present in the file
// replace the corresponding built-in table; absent ones keep the defaults.
func LoadFile(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read substitutions file %q: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML substitution tables on top of the defaults.
func Parse(data []byte) (*Tables, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse substitutions: %w", err)
	}

	tables := Defaults()
	if f.Substitution != nil {
		tables.Substitution = NewTable(f.Substitution)
	}
	if f.Person != nil {
		tables.Person = NewTable(f.Person)
	}
	if f.Person2 != nil {
		tables.Person2 = NewTable(f.Person2)
	}
	if f.Gender != nil {
		tables.Gender = NewTable(f.Gender)
	}
	return tables, nil
}

var defaultSubstitution = []Pair{
	{"can't", "can not"},
	{"won't", "will not"},
	{"don't", "do not"},
	{"doesn't", "does not"},
	{"isn't", "is not"},
	{"aren't", "are not"},
	{"i'm", "i am"},
	{"you're", "you are"},
	{"it's", "it is"},
	{"what's", "what is"},
	{"let's", "let us"},
	{"i've", "i have"},
	{"i'll", "i will"},
	{"i'd", "i would"},
}

var defaultPerson2 = []Pair{
	{"I was", "he or she was"},
	{"I am", "he or she is"},
	{"I", "he or she"},
	{"me", "him or her"},
	{"my", "his or her"},
	{"myself", "him or herself"},
	{"mine", "his or hers"},
	{"he or she", "I"},
	{"him or her", "me"},
	{"his or her", "my"},
	{"he", "I"},
	{"she", "I"},
	{"him", "me"},
	{"his", "my"},
}

var defaultPerson = []Pair{
	{"with you", "with me"},
	{"with me", "with you"},
	{"to you", "to me"},
	{"to me", "to you"},
	{"of you", "of me"},
	{"of me", "of you"},
	{"for you", "for me"},
	{"for me", "for you"},
	{"give you", "give me"},
	{"give me", "give you"},
	{"giving you", "giving me"},
	{"giving me", "giving you"},
	{"gave you", "gave me"},
	{"gave me", "gave you"},
	{"make you", "make me"},
	{"make me", "make you"},
	{"made you", "made me"},
	{"made me", "made you"},
	{"take you", "take me"},
	{"take me", "take you"},
	{"save you", "save me"},
	{"save me", "save you"},
	{"tell you", "tell me"},
	{"tell me", "tell you"},
	{"telling you", "telling me"},
	{"telling me", "telling you"},
	{"told you", "told me"},
	{"told me", "told you"},
	{"are you", "am I"},
	{"am I", "are you"},
	{"you are", "I am"},
	{"I am", "you are"},
	{"you", "me"},
	{"me", "you"},
	{"your", "my"},
	{"my", "your"},
	{"yours", "mine"},
	{"mine", "yours"},
	{"yourself", "myself"},
	{"myself", "yourself"},
	{"I was", "you were"},
	{"you were", "I was"},
	{"I", "you"},
}

var defaultGender = []Pair{
	{"with him", "with her"},
	{"with her", "with him"},
	{"to him", "to her"},
	{"to her", "to him"},
	{"on him", "on her"},
	{"on her", "on him"},
	{"he", "she"},
	{"she", "he"},
	{"his", "her"},
	{"him", "her"},
	{"her", "his"},
	{"himself", "herself"},
	{"herself", "himself"},
}
