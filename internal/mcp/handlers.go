package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/bull/ytchat/internal/chatbot"
)

// makeProcessVideoHandler creates the process_video tool handler.
func makeProcessVideoHandler(bot Chatbot, logger *slog.Logger) func(
	context.Context, *mcp.CallToolRequest, ProcessVideoInput,
) (*mcp.CallToolResult, ProcessVideoOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ProcessVideoInput) (
		*mcp.CallToolResult, ProcessVideoOutput, error,
	) {
		video := strings.TrimSpace(input.Video)
		if video == "" {
			return nil, ProcessVideoOutput{}, errors.New("video is required")
		}

		result, err := bot.Load(ctx, video)
		if err != nil {
			logger.Warn("process_video failed", "video", video, "error", err)
			switch {
			case errors.Is(err, chatbot.ErrInvalidVideoID):
				return nil, ProcessVideoOutput{}, fmt.Errorf("invalid_video: %w", err)
			case errors.Is(err, chatbot.ErrNoTranscript):
				return nil, ProcessVideoOutput{}, fmt.Errorf("no_transcript: %w", err)
			}
			return nil, ProcessVideoOutput{}, fmt.Errorf("failed to process video: %w", err)
		}

		status := bot.Status()
		return nil, ProcessVideoOutput{
			VideoID:         result.VideoID,
			SessionID:       status.SessionID,
			TranscriptChars: result.TranscriptChars,
			Chunks:          result.Chunks,
			Summaries:       result.Summaries,
			DurationMS:      result.Duration.Milliseconds(),
			Message:         fmt.Sprintf("Video %s processed. Ask questions with ask_question.", result.VideoID),
		}, nil
	}
}

// makeAskHandler creates the ask_question tool handler.
func makeAskHandler(bot Chatbot, logger *slog.Logger) func(
	context.Context, *mcp.CallToolRequest, AskQuestionInput,
) (*mcp.CallToolResult, AskQuestionOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AskQuestionInput) (
		*mcp.CallToolResult, AskQuestionOutput, error,
	) {
		question := strings.TrimSpace(input.Question)
		if question == "" {
			return nil, AskQuestionOutput{}, errors.New("question is required")
		}

		res, err := bot.Ask(ctx, question)
		if err != nil {
			if errors.Is(err, chatbot.ErrNoSession) {
				return nil, AskQuestionOutput{}, errors.New("no video loaded: call process_video first")
			}
			logger.Warn("ask_question failed", "error", err)
			return nil, AskQuestionOutput{}, fmt.Errorf("failed to answer question: %w", err)
		}

		return nil, AskQuestionOutput{
			Category: string(res.Category),
			Answer:   res.Text,
		}, nil
	}
}

// makeStatusHandler creates the get_session_status tool handler.
func makeStatusHandler(bot Chatbot) func(
	context.Context, *mcp.CallToolRequest, StatusInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input StatusInput) (
		*mcp.CallToolResult, StatusOutput, error,
	) {
		status := bot.Status()
		if !status.Ready {
			return nil, StatusOutput{
				Message: "No video loaded. Call process_video first.",
			}, nil
		}
		return nil, StatusOutput{
			Ready:     true,
			SessionID: status.SessionID,
			VideoID:   status.VideoID,
			Chunks:    status.Result.Chunks,
			Summaries: status.Result.Summaries,
			Questions: status.Questions,
		}, nil
	}
}
