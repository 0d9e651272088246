// Package prompt holds the prompt templates sent to the chat model.
package prompt

import (
	"errors"
	"fmt"
	"strings"
	"text/template"
)

// ErrMissingVariable is returned when Render is called without a declared variable.
var ErrMissingVariable = errors.New("missing prompt variable")

// Template is a named prompt with a fixed set of input variables.
type Template struct {
	name      string
	variables []string
	tmpl      *template.Template
}

// New parses text as a template over the given variables. Variables are
// referenced as {{.name}}.
func New(name, text string, variables ...string) (*Template, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse prompt %s: %w", name, err)
	}
	return &Template{name: name, variables: variables, tmpl: tmpl}, nil
}

// Must is like New but panics on a parse error. For package-level templates.
func Must(name, text string, variables ...string) *Template {
	t, err := New(name, text, variables...)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the template name.
func (t *Template) Name() string {
	return t.name
}

// Variables returns the declared input variables.
func (t *Template) Variables() []string {
	return append([]string(nil), t.variables...)
}

// Render fills the template. Every declared variable must be present.
func (t *Template) Render(vars map[string]string) (string, error) {
	for _, v := range t.variables {
		if _, ok := vars[v]; !ok {
			return "", fmt.Errorf("%w: %s needs %q", ErrMissingVariable, t.name, v)
		}
	}

	var sb strings.Builder
	if err := t.tmpl.Execute(&sb, vars); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", t.name, err)
	}
	return sb.String(), nil
}

// Variable names shared by the templates below.
const (
	VarContext            = "context"
	VarQuestion           = "question"
	VarUserQuery          = "user_query"
	VarFormatInstructions = "format_instructions"
	VarText               = "text"
)

// QA answers a question strictly from retrieved transcript chunks.
var QA = Must("qa", `
You are a helpful assistant.
Answer only from the provided transcript context.
If you don't know the answer, just say that you don't know. DO NOT try to make up an answer.
Context: {{.context}}
Question: {{.question}}
`, VarContext, VarQuestion)

// Summary summarizes retrieved chunk summaries in the manner the user asks for.
var Summary = Must("summary", `
You are a helpful assistant.
Summarize the following transcript into the manner user specified otherwise in a paragraph.
Keep only the main points and avoid adding extra information.

Summary : {{.context}}
Question : {{.question}}
`, VarContext, VarQuestion)

// Classification asks the model to label a query; format_instructions
// describes the expected JSON reply.
var Classification = Must("classification",
	"Classify the user query into either 'summary' or 'question_answer'.\n"+
		" User query : {{.user_query}} \n"+
		" {{.format_instructions}}",
	VarUserQuery, VarFormatInstructions)

// ChunkSummary condenses a single transcript chunk while building the summary index.
var ChunkSummary = Must("chunk_summary", `Write a concise summary of the following:


"{{.text}}"


CONCISE SUMMARY:`, VarText)
