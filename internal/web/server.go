// Package web serves the browser front end for the video chatbot.
package web

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bull/ytchat/internal/chatbot"
	"github.com/bull/ytchat/internal/router"
)

// Chatbot is the session holder behind the pages. *chatbot.Manager implements it.
type Chatbot interface {
	Load(ctx context.Context, videoInput string) (*chatbot.BuildResult, error)
	Ask(ctx context.Context, question string) (*router.Result, error)
	History() []chatbot.Entry
	ClearHistory()
	Status() chatbot.Status
}

// Config holds handler dependencies.
type Config struct {
	Chatbot Chatbot
	Logger  *slog.Logger
	// APIKeyMissing shows a warning banner on every page.
	APIKeyMissing bool
}

// Handler serves the chat pages.
type Handler struct {
	bot           Chatbot
	markdown      *markdownRenderer
	logger        *slog.Logger
	apiKeyMissing bool
	mux           *http.ServeMux
}

type entryView struct {
	Number   int
	Question string
	Answer   template.HTML
	Category string
}

type pageData struct {
	Status        chatbot.Status
	History       []entryView
	Error         string
	APIKeyMissing bool
	VideoInput    string
	QuestionInput string
}

// NewHandler creates the page handler with routes for /, /video, /ask and /clear.
func NewHandler(cfg *Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		bot:           cfg.Chatbot,
		markdown:      newMarkdownRenderer(),
		logger:        logger,
		apiKeyMissing: cfg.APIKeyMissing,
		mux:           http.NewServeMux(),
	}
	h.mux.HandleFunc("GET /{$}", h.handleIndex)
	h.mux.HandleFunc("POST /video", h.handleVideo)
	h.mux.HandleFunc("POST /ask", h.handleAsk)
	h.mux.HandleFunc("POST /clear", h.handleClear)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, pageData{})
}

func (h *Handler) handleVideo(w http.ResponseWriter, r *http.Request) {
	video := strings.TrimSpace(r.FormValue("video"))
	if video == "" {
		h.render(w, http.StatusBadRequest, pageData{Error: "Please enter a YouTube video URL or ID."})
		return
	}

	result, err := h.bot.Load(r.Context(), video)
	if err != nil {
		status, msg := http.StatusInternalServerError, "Error processing video: "+err.Error()
		switch {
		case errors.Is(err, chatbot.ErrInvalidVideoID):
			status, msg = http.StatusBadRequest, "Could not find a video ID in "+video+"."
		case errors.Is(err, chatbot.ErrNoTranscript):
			status, msg = http.StatusUnprocessableEntity, "No transcript found for this video or failed to process."
		}
		h.logger.Warn("Failed to process video", "video", video, "error", err)
		h.render(w, status, pageData{Error: msg, VideoInput: video})
		return
	}

	h.logger.Info("Video processed", "video_id", result.VideoID, "chunks", result.Chunks, "duration", result.Duration)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) handleAsk(w http.ResponseWriter, r *http.Request) {
	question := strings.TrimSpace(r.FormValue("question"))
	if question == "" {
		h.render(w, http.StatusBadRequest, pageData{Error: "Please enter a valid question."})
		return
	}

	if _, err := h.bot.Ask(r.Context(), question); err != nil {
		status, msg := http.StatusInternalServerError, "Error generating answer: "+err.Error()
		if errors.Is(err, chatbot.ErrNoSession) {
			status, msg = http.StatusConflict, "Please process a video before asking questions."
		}
		h.logger.Warn("Failed to answer question", "error", err)
		h.render(w, status, pageData{Error: msg, QuestionInput: question})
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	h.bot.ClearHistory()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, status int, data pageData) {
	data.Status = h.bot.Status()
	data.APIKeyMissing = h.apiKeyMissing
	for i, e := range h.bot.History() {
		data.History = append(data.History, entryView{
			Number:   i + 1,
			Question: e.Question,
			Answer:   h.markdown.Render(e.Answer),
			Category: string(e.Category),
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		h.logger.Error("Failed to render page", "error", err)
	}
}
