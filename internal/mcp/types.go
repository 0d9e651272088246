// Package mcp exposes the video chatbot as Model Context Protocol tools.
package mcp

// ProcessVideoInput defines the input parameters for the process_video tool.
type ProcessVideoInput struct {
	// Video is a YouTube URL or a bare 11-character video id.
	Video string `json:"video" jsonschema:"YouTube video URL or 11-character video id to load"`
}

// ProcessVideoOutput reports the session built for a video.
type ProcessVideoOutput struct {
	VideoID         string `json:"video_id"`
	SessionID       string `json:"session_id"`
	TranscriptChars int    `json:"transcript_chars"`
	Chunks          int    `json:"chunks"`
	Summaries       int    `json:"summaries"`
	// DurationMS is how long transcript fetching and indexing took.
	DurationMS int64  `json:"duration_ms"`
	Message    string `json:"message"`
}

// AskQuestionInput defines the input parameters for the ask_question tool.
type AskQuestionInput struct {
	Question string `json:"question" jsonschema:"Question about the loaded video, or a request to summarize it"`
}

// AskQuestionOutput contains the routed answer.
type AskQuestionOutput struct {
	// Category is the route the question took: summary or question_answer.
	Category string `json:"category"`
	Answer   string `json:"answer"`
}

// StatusInput takes no parameters.
type StatusInput struct{}

// StatusOutput describes the active session.
type StatusOutput struct {
	Ready     bool   `json:"ready"`
	SessionID string `json:"session_id,omitempty"`
	VideoID   string `json:"video_id,omitempty"`
	Chunks    int    `json:"chunks"`
	Summaries int    `json:"summaries"`
	// Questions is the number of answered questions in the session history.
	Questions int    `json:"questions"`
	Message   string `json:"message,omitempty"`
}
