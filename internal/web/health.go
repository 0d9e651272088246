package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/bull/ytchat/internal/chatbot"
)

// HealthResponse represents the JSON response from the health check endpoint.
type HealthResponse struct {
	Status      string `json:"status"`
	VectorStore string `json:"vector_store"`
	Backend     string `json:"backend"`
	// Session is "ready" once a video is loaded, "empty" before.
	Session   string `json:"session"`
	VideoID   string `json:"video_id,omitempty"`
	Questions int    `json:"questions"`
	Timestamp string `json:"timestamp"`
}

// HealthChecker checks the vector store connection.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// SessionReporter reports the loaded video. *chatbot.Manager implements it.
type SessionReporter interface {
	Status() chatbot.Status
}

// NewHealthHandler creates an HTTP handler for the /health endpoint. A nil
// store is the in-memory backend and always connected. The session never
// affects the status code: an empty chatbot is still a healthy process.
func NewHealthHandler(store HealthChecker, backend string, sessions SessionReporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		response := HealthResponse{
			Status:      "healthy",
			VectorStore: "connected",
			Backend:     backend,
			Session:     "empty",
			Timestamp:   time.Now().UTC().Format(time.RFC3339),
		}
		if sessions != nil {
			if st := sessions.Status(); st.Ready {
				response.Session = "ready"
				response.VideoID = st.VideoID
				response.Questions = st.Questions
			}
		}

		code := http.StatusOK
		if store != nil {
			if err := store.Health(ctx); err != nil {
				response.Status = "unhealthy"
				response.VectorStore = "disconnected"
				code = http.StatusServiceUnavailable
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(response)
	}
}
