package classify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// keywordLLM answers like a well-behaved model: summary for overview
// requests, question_answer otherwise.
type keywordLLM struct {
	prompts []string
}

func (l *keywordLLM) CompleteJSON(ctx context.Context, p string) (string, error) {
	l.prompts = append(l.prompts, p)
	query := p[strings.Index(p, "User query :"):]
	query = strings.ToLower(query[:strings.Index(query, "\n")])
	for _, word := range []string{"summarize", "summary", "overview", "gist"} {
		if strings.Contains(query, word) {
			return `{"category": "summary"}`, nil
		}
	}
	return `{"category": "question_answer"}`, nil
}

type fixedLLM struct {
	reply string
	err   error
	calls int
}

func (l *fixedLLM) CompleteJSON(ctx context.Context, p string) (string, error) {
	l.calls++
	return l.reply, l.err
}

func TestClassify_Keywords(t *testing.T) {
	llm := &keywordLLM{}
	c, err := New(llm, nil)
	require.NoError(t, err)

	tests := []struct {
		query string
		want  Category
	}{
		{"Summarize this video", Summary},
		{"Give me an overview of the talk", Summary},
		{"What did the speaker say about X?", QuestionAnswer},
		{"How many dogs ran?", QuestionAnswer},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := c.Classify(context.Background(), tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_PromptCarriesFormatInstructions(t *testing.T) {
	llm := &keywordLLM{}
	c, err := New(llm, nil)
	require.NoError(t, err)

	_, err = c.Classify(context.Background(), "Summarize this video")
	require.NoError(t, err)

	p := llm.prompts[0]
	assert.True(t, strings.HasPrefix(p, "Classify the user query into either 'summary' or 'question_answer'."))
	assert.Contains(t, p, "User query : Summarize this video")
	assert.Contains(t, p, `"enum":["summary","question_answer"]`)
	assert.Contains(t, p, `"required":["category"]`)
}

func TestClassify_AcceptsCodeFence(t *testing.T) {
	c, err := New(&fixedLLM{reply: "```json\n{\"category\": \"summary\"}\n```"}, nil)
	require.NoError(t, err)

	got, err := c.Classify(context.Background(), "tl;dr?")
	require.NoError(t, err)
	assert.Equal(t, Summary, got)
}

func TestClassify_Malformed(t *testing.T) {
	replies := map[string]string{
		"not json":       "summary",
		"wrong enum":     `{"category": "chitchat"}`,
		"missing field":  `{"label": "summary"}`,
		"wrong type":     `{"category": 1}`,
		"array":          `["summary"]`,
		"truncated json": `{"category": "summ`,
	}
	for name, reply := range replies {
		t.Run(name, func(t *testing.T) {
			llm := &fixedLLM{reply: reply}
			c, err := New(llm, nil)
			require.NoError(t, err)

			_, err = c.Classify(context.Background(), "anything")
			assert.ErrorIs(t, err, ErrMalformedClassification)
			assert.Equal(t, 1, llm.calls, "no retry on malformed output")
		})
	}
}

func TestClassify_ProviderError(t *testing.T) {
	boom := errors.New("provider down")
	c, err := New(&fixedLLM{err: boom}, nil)
	require.NoError(t, err)

	_, err = c.Classify(context.Background(), "anything")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrMalformedClassification)
}

func TestParseCategory(t *testing.T) {
	got, err := ParseCategory("summary")
	require.NoError(t, err)
	assert.Equal(t, Summary, got)

	got, err = ParseCategory("question_answer")
	require.NoError(t, err)
	assert.Equal(t, QuestionAnswer, got)

	_, err = ParseCategory("Summary")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}
