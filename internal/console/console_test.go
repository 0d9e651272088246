package console

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bull/ytchat/internal/classify"
	"github.com/bull/ytchat/internal/router"
)

type scriptedAsker struct {
	questions []string
	errs      map[string]error
}

func (a *scriptedAsker) Ask(ctx context.Context, q string) (*router.Result, error) {
	a.questions = append(a.questions, q)
	if err := a.errs[q]; err != nil {
		return nil, err
	}
	return &router.Result{Category: classify.QuestionAnswer, Text: "answer to " + q}, nil
}

func TestRun_QuitWords(t *testing.T) {
	for _, word := range []string{"quit", "EXIT", " q "} {
		t.Run(word, func(t *testing.T) {
			asker := &scriptedAsker{}
			var out bytes.Buffer

			err := Run(context.Background(), strings.NewReader("What?\n"+word+"\nnever asked\n"), &out, asker)
			require.NoError(t, err)

			assert.Equal(t, []string{"What?"}, asker.questions)
			assert.Contains(t, out.String(), "\nanswer to What?\n")
			assert.True(t, strings.HasSuffix(out.String(), "Goodbye!\n"))
		})
	}
}

func TestRun_EmptyInputPrompts(t *testing.T) {
	asker := &scriptedAsker{}
	var out bytes.Buffer

	err := Run(context.Background(), strings.NewReader("\n   \nq\n"), &out, asker)
	require.NoError(t, err)

	assert.Empty(t, asker.questions)
	assert.Equal(t, 2, strings.Count(out.String(), "Please enter a valid question."))
}

func TestRun_ErrorKeepsLooping(t *testing.T) {
	asker := &scriptedAsker{errs: map[string]error{
		"bad": classify.ErrMalformedClassification,
	}}
	var out bytes.Buffer

	err := Run(context.Background(), strings.NewReader("bad\ngood\n"), &out, asker)
	require.NoError(t, err)

	assert.Equal(t, []string{"bad", "good"}, asker.questions)
	assert.Contains(t, out.String(), "Error generating answer: malformed classification")
	assert.Contains(t, out.String(), "answer to good")
	assert.True(t, strings.HasSuffix(out.String(), "Goodbye!\n"), "EOF ends the loop")
}

func TestRun_CancellationStops(t *testing.T) {
	asker := &scriptedAsker{errs: map[string]error{
		"slow": context.Canceled,
	}}
	var out bytes.Buffer

	err := Run(context.Background(), strings.NewReader("slow\nnext\n"), &out, asker)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, []string{"slow"}, asker.questions)
}

func TestRun_Banner(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), strings.NewReader(""), &out, &scriptedAsker{}))

	assert.True(t, strings.HasPrefix(out.String(), "YouTube Video Q&A System\n"))
	assert.Contains(t, out.String(), strings.Repeat("-", 63))
}
