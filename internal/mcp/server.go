package mcp

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/bull/ytchat/internal/chatbot"
	"github.com/bull/ytchat/internal/router"
)

// Chatbot is the session holder the tools operate on. *chatbot.Manager
// implements it.
type Chatbot interface {
	Load(ctx context.Context, videoInput string) (*chatbot.BuildResult, error)
	Ask(ctx context.Context, question string) (*router.Result, error)
	Status() chatbot.Status
}

// Server wraps the MCP server with dependencies.
type Server struct {
	server *mcp.Server
	bot    Chatbot
}

// Config holds server dependencies.
type Config struct {
	Chatbot Chatbot
	Logger  *slog.Logger
	// Version is reported to clients; defaults to v0.1.0.
	Version string
}

// NewServer creates a configured MCP server with tools registered.
func NewServer(cfg *Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	version := cfg.Version
	if version == "" {
		version = "v0.1.0"
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "ytchat",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "process_video",
		Description: "Load a YouTube video: fetch its transcript and build the question-answering and summary indexes. Replaces any previously loaded video and clears the question history. Can take a while for long videos.",
	}, makeProcessVideoHandler(cfg.Chatbot, logger))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ask_question",
		Description: "Ask a question about the loaded video. Requests to summarize are answered from chunk summaries, other questions from the transcript passages most similar to the question.",
	}, makeAskHandler(cfg.Chatbot, logger))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_session_status",
		Description: "Report whether a video is loaded, its id, index sizes and the number of answered questions.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, makeStatusHandler(cfg.Chatbot))

	return &Server{
		server: server,
		bot:    cfg.Chatbot,
	}
}

// Run starts the server with stdio transport (blocks until client disconnects).
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// MCPServer returns the underlying MCP server instance.
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}
