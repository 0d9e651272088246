// Package main provides the ytchat CLI: chat with a YouTube video from the
// terminal, print its transcript, or serve the web front end.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/bull/ytchat/internal/chatbot"
	"github.com/bull/ytchat/internal/config"
	"github.com/bull/ytchat/internal/console"
	mcpserver "github.com/bull/ytchat/internal/mcp"
	"github.com/bull/ytchat/internal/transcript"
	"github.com/bull/ytchat/internal/web"
)

const defaultVideo = "https://www.youtube.com/watch?v=XmRrGzR6udg"

var rootCmd = &cobra.Command{
	Use:   "ytchat",
	Short: "Ask questions about YouTube videos",
	Long: `Fetches a YouTube transcript, indexes it for question answering and
summarization, and answers questions about it.

Environment variables:
  OPENAI_API_KEY          OpenAI API key (required for answers)
  OPENAI_BASE_URL         OpenAI-compatible endpoint (optional)
  YTCHAT_CHAT_MODEL       chat model (default: gpt-4o-mini)
  YTCHAT_EMBEDDING_MODEL  embedding model (default: text-embedding-3-small)
  YTCHAT_LANGUAGE         transcript language (default: en)
  YTCHAT_VECTOR_STORE     memory or qdrant (default: memory)
  QDRANT_HOST             Qdrant hostname (default: localhost)
  QDRANT_PORT             Qdrant gRPC port (default: 6334)
  YTCHAT_CACHE_DIR        transcript cache directory (optional)
  YTCHAT_SUMMARY_DELAY    pause between chunk summaries (default: 8s)
  YTCHAT_LLM_RPM          cap on model requests per minute (optional)`,
	SilenceUsage: true,
}

var chatCmd = &cobra.Command{
	Use:   "chat [video]",
	Short: "Chat with a video in the terminal",
	Long: `Processes the video transcript, then answers questions typed on stdin.
Type 'quit' or 'exit' to stop. The video may be a URL or an 11-character id.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChat,
}

var transcriptCmd = &cobra.Command{
	Use:   "transcript <video>",
	Short: "Print the transcript of a video",
	Args:  cobra.ExactArgs(1),
	RunE:  runTranscript,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web front end",
	Long: `Serves the browser UI at /, a health check at /health and the MCP
Streamable HTTP endpoint at /mcp. All share one loaded video.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().String("lang", "", "transcript language code (overrides YTCHAT_LANGUAGE)")
	rootCmd.PersistentFlags().String("vector-store", "", "memory or qdrant (overrides YTCHAT_VECTOR_STORE)")
	chatCmd.Flags().Int("k", 0, "transcript chunks retrieved per question (overrides YTCHAT_QA_K)")
	serveCmd.Flags().String("port", "", "HTTP port (overrides PORT)")

	rootCmd.AddCommand(chatCmd, transcriptCmd, serveCmd)
}

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the environment and applies flags set on cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("lang") {
		cfg.Language, _ = flags.GetString("lang")
	}
	if flags.Changed("vector-store") {
		v, _ := flags.GetString("vector-store")
		cfg.VectorStore = strings.ToLower(v)
	}
	if flags.Lookup("k") != nil && flags.Changed("k") {
		cfg.QAK, _ = flags.GetInt("k")
	}
	if flags.Lookup("port") != nil && flags.Changed("port") {
		cfg.Port, _ = flags.GetString("port")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !cfg.HasAPIKey() {
		fmt.Fprintln(os.Stderr, "Warning: OPENAI_API_KEY not found in environment variables. Please set it to get answers.")
	}
	return cfg, nil
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := cfg.NewLogger()

	video := defaultVideo
	if len(args) == 1 {
		video = args[0]
	}

	rt, err := chatbot.NewRuntime(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	fmt.Println("Processing video transcript...")
	session, err := chatbot.Build(ctx, rt.Deps, video)
	if err != nil {
		if errors.Is(err, chatbot.ErrNoTranscript) {
			fmt.Println("No transcript found for this video.")
		}
		return err
	}
	defer session.Close()

	fmt.Printf("Indexed %d chunks and %d summaries in %s\n\n",
		session.Result.Chunks, session.Result.Summaries, session.Result.Duration.Round(time.Second))

	return console.Run(ctx, os.Stdin, os.Stdout, session)
}

func runTranscript(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := cfg.NewLogger()

	videoID, ok := transcript.ExtractVideoID(args[0])
	if !ok {
		return fmt.Errorf("%w: %q", chatbot.ErrInvalidVideoID, args[0])
	}

	fetcher := transcript.NewFetcher(nil, cfg.Language, logger)
	var source transcript.Source = fetcher
	if cfg.CacheDir != "" {
		cache, err := transcript.OpenCache(cfg.CacheDir)
		if err != nil {
			return err
		}
		defer cache.Close()
		source = transcript.NewCachingSource(fetcher, cache, cfg.Language, logger)
	}

	t, err := source.Fetch(ctx, videoID)
	if err != nil {
		return err
	}
	fmt.Println(t.Text)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := cfg.NewLogger()

	rt, err := chatbot.NewRuntime(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	manager := chatbot.NewManager(rt.Deps)
	defer manager.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", web.NewHealthHandler(rt, rt.Backend(), manager))
	mux.Handle("/mcp", mcpserver.NewHTTPHandler(mcpserver.NewServer(&mcpserver.Config{
		Chatbot: manager,
		Logger:  logger,
	}), nil))
	mux.Handle("/", web.NewHandler(&web.Config{
		Chatbot:       manager,
		Logger:        logger,
		APIKeyMissing: !cfg.HasAPIKey(),
	}))

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting HTTP server", "addr", srv.Addr, "backend", rt.Backend())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("Shutting down HTTP server")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
