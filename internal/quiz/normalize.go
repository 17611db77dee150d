package quiz

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

type DiagnosticKind string

const (
	MalformedQuestion DiagnosticKind = "malformed_question"
	MalformedQuiz     DiagnosticKind = "malformed_quiz"
)

// Diagnostic is a non-fatal problem found while loading quizzes.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Source  string         `json:"source,omitempty"`
	Quiz    string         `json:"quiz,omitempty"`
	Prompt  string         `json:"prompt,omitempty"`
	Message string         `json:"message"`
}

func (d Diagnostic) String() string {
	var b strings.Builder
	b.WriteString(string(d.Kind))
	if d.Source != "" {
		fmt.Fprintf(&b, " %s", d.Source)
	}
	if d.Quiz != "" {
		fmt.Fprintf(&b, " quiz=%q", d.Quiz)
	}
	if d.Prompt != "" {
		fmt.Fprintf(&b, " question=%q", d.Prompt)
	}
	b.WriteString(": ")
	b.WriteString(d.Message)
	return b.String()
}

// RawValue is a scalar answer as written in a quiz file.
type RawValue struct {
	Text   string
	IsBool bool
	Bool   bool
}

func StringValue(s string) RawValue { return RawValue{Text: s} }

func BoolValue(b bool) RawValue { return RawValue{Text: boolString(b), IsBool: true, Bool: b} }

func (v *RawValue) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: answer must be a scalar", n.Line)
	}
	if n.ShortTag() == "!!bool" {
		var b bool
		if err := n.Decode(&b); err != nil {
			return err
		}
		*v = BoolValue(b)
		return nil
	}
	if b, ok := yaml11Bools[n.Value]; ok && n.Style == 0 && n.ShortTag() == "!!str" {
		*v = BoolValue(b)
		return nil
	}
	*v = StringValue(n.Value)
	return nil
}

// yaml11Bools are the plain-scalar booleans of YAML 1.1 that YAML 1.2
// reads as strings. Quoted or explicitly tagged scalars stay strings.
var yaml11Bools = map[string]bool{
	"yes": true, "Yes": true, "YES": true,
	"on": true, "On": true, "ON": true,
	"no": false, "No": false, "NO": false,
	"off": false, "Off": false, "OFF": false,
}

// RawDistractors accepts either a single scalar or a list of scalars.
type RawDistractors struct {
	Values []RawValue
	Scalar bool
}

func (d *RawDistractors) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		var v RawValue
		if err := v.UnmarshalYAML(n); err != nil {
			return err
		}
		d.Values, d.Scalar = []RawValue{v}, true
		return nil
	case yaml.SequenceNode:
		d.Values = make([]RawValue, 0, len(n.Content))
		for _, c := range n.Content {
			var v RawValue
			if err := v.UnmarshalYAML(c); err != nil {
				return err
			}
			d.Values = append(d.Values, v)
		}
		return nil
	default:
		return fmt.Errorf("line %d: distractors must be a scalar or a list", n.Line)
	}
}

type RawQuestion struct {
	Prompt      string          `yaml:"prompt"`
	Correct     *RawValue       `yaml:"correct"`
	Distractors *RawDistractors `yaml:"distractors"`
	Hint        string          `yaml:"hint"`
}

type RawQuiz struct {
	Title     string        `yaml:"title"`
	Questions []RawQuestion `yaml:"questions"`
}

// Normalize turns a raw question into its canonical form. ok is false when the
// question cannot be used at all; diagnostics are advisory either way.
func Normalize(raw RawQuestion) (q Question, diags []Diagnostic, ok bool) {
	prompt := strings.TrimSpace(raw.Prompt)
	bad := func(msg string) {
		diags = append(diags, Diagnostic{Kind: MalformedQuestion, Prompt: prompt, Message: msg})
	}
	if prompt == "" {
		bad("missing prompt")
		return Question{}, diags, false
	}
	if raw.Correct == nil {
		bad("missing correct answer")
		return Question{}, diags, false
	}

	q = Question{Prompt: raw.Prompt, Hint: raw.Hint}

	if raw.Correct.IsBool {
		q.Correct = boolString(raw.Correct.Bool)
		negation := boolString(!raw.Correct.Bool)
		q.Distractors = []string{negation}
		if raw.Distractors != nil {
			for _, d := range raw.Distractors.Values {
				if strings.TrimSpace(d.Text) != negation {
					bad(fmt.Sprintf("true/false question ignores distractor %q", d.Text))
				}
			}
		}
		return q, diags, true
	}

	q.Correct = strings.TrimSpace(raw.Correct.Text)
	if raw.Distractors == nil || len(raw.Distractors.Values) == 0 {
		bad("missing distractors")
		return Question{}, diags, false
	}
	q.Distractors = make([]string, 0, len(raw.Distractors.Values))
	for _, d := range raw.Distractors.Values {
		q.Distractors = append(q.Distractors, strings.TrimSpace(d.Text))
	}

	seen := make(map[string]struct{}, len(q.Distractors)+1)
	for _, opt := range append([]string{q.Correct}, q.Distractors...) {
		if _, dup := seen[opt]; dup {
			bad(fmt.Sprintf("duplicate option %q", opt))
			break
		}
		seen[opt] = struct{}{}
	}
	return q, diags, true
}

func boolString(b bool) string {
	if b {
		return True
	}
	return False
}
