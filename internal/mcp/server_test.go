package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bull/ytchat/internal/chatbot"
	"github.com/bull/ytchat/internal/classify"
	"github.com/bull/ytchat/internal/router"
)

type fakeBot struct {
	loaded    string
	loadErr   error
	questions []string
}

func (b *fakeBot) Load(ctx context.Context, video string) (*chatbot.BuildResult, error) {
	if b.loadErr != nil {
		return nil, b.loadErr
	}
	b.loaded = video
	b.questions = nil
	return &chatbot.BuildResult{
		VideoID:         "Gfr50f6ZBvo",
		TranscriptChars: 1200,
		Chunks:          3,
		Summaries:       3,
		Duration:        1500 * time.Millisecond,
	}, nil
}

func (b *fakeBot) Ask(ctx context.Context, q string) (*router.Result, error) {
	if b.loaded == "" {
		return nil, chatbot.ErrNoSession
	}
	b.questions = append(b.questions, q)
	return &router.Result{Category: classify.QuestionAnswer, Text: "It was a cat."}, nil
}

func (b *fakeBot) Status() chatbot.Status {
	if b.loaded == "" {
		return chatbot.Status{}
	}
	return chatbot.Status{
		Ready:     true,
		SessionID: "session-1",
		VideoID:   "Gfr50f6ZBvo",
		Result:    chatbot.BuildResult{Chunks: 3, Summaries: 3},
		Questions: len(b.questions),
	}
}

func connect(t *testing.T, bot Chatbot) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	server := NewServer(&Config{Chatbot: bot})
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	ss, err := server.MCPServer().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { cs.Close() })
	return cs
}

func call[Out any](t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) (*mcp.CallToolResult, Out) {
	t.Helper()
	var out Out
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	if !res.IsError {
		raw, err := json.Marshal(res.StructuredContent)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return res, out
}

func errorText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.True(t, res.IsError)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestServer_ListsTools(t *testing.T) {
	cs := connect(t, &fakeBot{})

	res, err := cs.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"process_video", "ask_question", "get_session_status"}, names)
}

func TestServer_ProcessAskStatus(t *testing.T) {
	bot := &fakeBot{}
	cs := connect(t, bot)

	_, status := call[StatusOutput](t, cs, "get_session_status", map[string]any{})
	assert.False(t, status.Ready)
	assert.Contains(t, status.Message, "process_video")

	_, processed := call[ProcessVideoOutput](t, cs, "process_video", map[string]any{
		"video": "https://youtu.be/Gfr50f6ZBvo",
	})
	assert.Equal(t, "https://youtu.be/Gfr50f6ZBvo", bot.loaded)
	assert.Equal(t, "Gfr50f6ZBvo", processed.VideoID)
	assert.Equal(t, "session-1", processed.SessionID)
	assert.Equal(t, 3, processed.Chunks)
	assert.Equal(t, int64(1500), processed.DurationMS)

	_, answer := call[AskQuestionOutput](t, cs, "ask_question", map[string]any{
		"question": "What animal appears?",
	})
	assert.Equal(t, "question_answer", answer.Category)
	assert.Equal(t, "It was a cat.", answer.Answer)

	_, status = call[StatusOutput](t, cs, "get_session_status", map[string]any{})
	assert.True(t, status.Ready)
	assert.Equal(t, "Gfr50f6ZBvo", status.VideoID)
	assert.Equal(t, 1, status.Questions)
}

func TestServer_AskWithoutVideo(t *testing.T) {
	cs := connect(t, &fakeBot{})

	res, _ := call[AskQuestionOutput](t, cs, "ask_question", map[string]any{"question": "Why?"})
	assert.Contains(t, errorText(t, res), "no video loaded")
}

func TestServer_BlankInputsRejected(t *testing.T) {
	bot := &fakeBot{}
	cs := connect(t, bot)

	res, _ := call[ProcessVideoOutput](t, cs, "process_video", map[string]any{"video": "   "})
	assert.Contains(t, errorText(t, res), "video is required")
	assert.Empty(t, bot.loaded)
}

func TestServer_ProcessVideoErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"invalid id", fmt.Errorf("%w: %q", chatbot.ErrInvalidVideoID, "nope"), "invalid_video"},
		{"no transcript", chatbot.ErrNoTranscript, "no_transcript"},
		{"other", fmt.Errorf("embedding service down"), "failed to process video"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := connect(t, &fakeBot{loadErr: tt.err})
			res, _ := call[ProcessVideoOutput](t, cs, "process_video", map[string]any{"video": "nope"})
			assert.Contains(t, errorText(t, res), tt.want)
		})
	}
}
