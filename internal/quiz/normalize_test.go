package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func decodeQuestion(t *testing.T, src string) RawQuestion {
	t.Helper()
	var rq RawQuestion
	require.NoError(t, yaml.Unmarshal([]byte(src), &rq))
	return rq
}

func TestNormalizeString(t *testing.T) {
	rq := decodeQuestion(t, `
prompt: Capital of France?
correct: "  Paris "
distractors: [" London", "Berlin  ", Rome]
hint: It has a tower.
`)
	q, diags, ok := Normalize(rq)
	require.True(t, ok)
	assert.Empty(t, diags)
	assert.Equal(t, "Paris", q.Correct)
	assert.Equal(t, []string{"London", "Berlin", "Rome"}, q.Distractors)
	assert.Equal(t, "It has a tower.", q.Hint)
}

func TestNormalizeScalarDistractor(t *testing.T) {
	q, diags, ok := Normalize(decodeQuestion(t, `
prompt: 2+2?
correct: 4
distractors: 5
`))
	require.True(t, ok)
	assert.Empty(t, diags)
	assert.Equal(t, "4", q.Correct)
	assert.Equal(t, []string{"5"}, q.Distractors)
}

func TestNormalizeBoolean(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		correct   string
		wantDiags int
	}{
		{"true without distractors", "prompt: Sky is blue?\ncorrect: true\n", True, 0},
		{"false without distractors", "prompt: Water is dry?\ncorrect: false\n", False, 0},
		{"matching distractor", "prompt: p\ncorrect: true\ndistractors: false\n", True, 0},
		{"matching string distractor", "prompt: p\ncorrect: true\ndistractors: [\"False\"]\n", True, 0},
		{"foreign distractor", "prompt: p\ncorrect: true\ndistractors: [maybe]\n", True, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, diags, ok := Normalize(decodeQuestion(t, tt.src))
			require.True(t, ok)
			assert.Len(t, diags, tt.wantDiags)
			assert.Equal(t, tt.correct, q.Correct)
			require.Len(t, q.Distractors, 1)
			assert.NotEqual(t, q.Correct, q.Distractors[0])
			assert.ElementsMatch(t, []string{True, False}, Options(q, nil))
		})
	}
}

func TestNormalizeQuotedBoolIsString(t *testing.T) {
	q, _, ok := Normalize(decodeQuestion(t, "prompt: p\ncorrect: \"true\"\ndistractors: [\"false\"]\n"))
	require.True(t, ok)
	assert.Equal(t, "true", q.Correct)
}

func TestNormalizeDuplicateIsAdvisory(t *testing.T) {
	q, diags, ok := Normalize(RawQuestion{
		Prompt:      "Pick one",
		Correct:     &RawValue{Text: "A"},
		Distractors: &RawDistractors{Values: []RawValue{StringValue("B"), StringValue(" A ")}},
	})
	require.True(t, ok)
	require.Len(t, diags, 1)
	assert.Equal(t, MalformedQuestion, diags[0].Kind)
	assert.Equal(t, "Pick one", diags[0].Prompt)
	assert.Equal(t, []string{"B", "A"}, q.Distractors)
}

func TestNormalizeRejectsUnusable(t *testing.T) {
	tests := []struct {
		name string
		raw  RawQuestion
	}{
		{"no prompt", RawQuestion{Correct: &RawValue{Text: "a"}}},
		{"no correct", RawQuestion{Prompt: "p"}},
		{"no distractors", RawQuestion{Prompt: "p", Correct: &RawValue{Text: "a"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, diags, ok := Normalize(tt.raw)
			assert.False(t, ok)
			require.Len(t, diags, 1)
			assert.Equal(t, MalformedQuestion, diags[0].Kind)
		})
	}
}

func TestParseDefinitionYAML11Booleans(t *testing.T) {
	def, diags, ok := ParseDefinition([]byte(`
title: Spellings
questions:
  - prompt: Is water wet?
    correct: yes
  - prompt: Is fire cold?
    correct: Off
  - prompt: Quoted stays text
    correct: "yes"
    distractors: ["no"]
  - prompt: Tagged stays text
    correct: !!str on
    distractors: [off]
`))
	require.True(t, ok)
	assert.Empty(t, diags)
	require.Len(t, def.Questions, 4)

	assert.Equal(t, True, def.Questions[0].Correct)
	assert.Equal(t, []string{False}, def.Questions[0].Distractors)
	assert.Equal(t, False, def.Questions[1].Correct)
	assert.Equal(t, []string{True}, def.Questions[1].Distractors)

	assert.Equal(t, "yes", def.Questions[2].Correct)
	assert.Equal(t, []string{"no"}, def.Questions[2].Distractors)

	assert.Equal(t, "on", def.Questions[3].Correct)
	assert.Equal(t, []string{"False"}, def.Questions[3].Distractors, "plain distractor spellings follow YAML 1.1 too")
}
