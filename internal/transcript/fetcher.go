// Package transcript fetches YouTube caption tracks and flattens them to text.
package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
)

// Transcript is the full caption text of one video.
type Transcript struct {
	VideoID  string
	Language string
	Text     string // segments joined with single spaces
	Segments int
}

// Source returns the transcript of a video.
type Source interface {
	Fetch(ctx context.Context, videoID string) (*Transcript, error)
}

// playerResponseMarker precedes the player response JSON in watch page HTML.
const playerResponseMarker = "ytInitialPlayerResponse = "

type playerResponse struct {
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" = auto-generated
}

type timedText struct {
	Lines []struct {
		Text string `xml:",chardata"`
	} `xml:"text"`
}

var tagRe = regexp.MustCompile(`<[^>]*>`)

// Fetcher reads caption tracks by scraping the watch page for the player
// response and downloading the matching timedtext XML.
type Fetcher struct {
	client   *Client
	baseURL  string
	language string
	logger   *slog.Logger
}

// NewFetcher creates a Fetcher for the given caption language ("en" if empty).
func NewFetcher(client *Client, language string, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = NewClient(nil)
	}
	if language == "" {
		language = "en"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		client:   client,
		baseURL:  DefaultBaseURL,
		language: language,
		logger:   logger,
	}
}

// WithBaseURL points the fetcher at another origin. Used by tests.
func (f *Fetcher) WithBaseURL(baseURL string) *Fetcher {
	f.baseURL = strings.TrimSuffix(baseURL, "/")
	return f
}

// Language returns the caption language the fetcher requests.
func (f *Fetcher) Language() string {
	return f.language
}

// Fetch downloads the transcript for videoID. It returns
// ErrTranscriptsDisabled when the video has no captions and ErrNoTrack when
// none is in the configured language.
func (f *Fetcher) Fetch(ctx context.Context, videoID string) (*Transcript, error) {
	watchURL := f.baseURL + "/watch?v=" + url.QueryEscape(videoID)

	page, err := f.client.Get(ctx, watchURL)
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}

	player, err := parsePlayerResponse(page)
	if err != nil {
		return nil, fmt.Errorf("video %s: %w", videoID, err)
	}

	if status := player.PlayabilityStatus; status != nil && status.Status != "" && status.Status != "OK" {
		return nil, fmt.Errorf("%w: %s: %s", ErrVideoUnavailable, status.Status, status.Reason)
	}

	if player.Captions == nil || len(player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks) == 0 {
		return nil, fmt.Errorf("video %s: %w", videoID, ErrTranscriptsDisabled)
	}

	track, ok := pickTrack(player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks, f.language)
	if !ok {
		return nil, fmt.Errorf("video %s (%s): %w", videoID, f.language, ErrNoTrack)
	}

	xmlBody, err := f.client.Get(ctx, track.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("caption track: %w", err)
	}

	text, segments, err := parseTimedText(xmlBody)
	if err != nil {
		return nil, fmt.Errorf("video %s: %w", videoID, err)
	}

	f.logger.Debug("Fetched transcript",
		"video", videoID,
		"language", track.LanguageCode,
		"generated", track.Kind == "asr",
		"segments", segments,
		"chars", len(text),
	)

	return &Transcript{
		VideoID:  videoID,
		Language: track.LanguageCode,
		Text:     text,
		Segments: segments,
	}, nil
}

// parsePlayerResponse locates and decodes the player response in watch page HTML.
func parsePlayerResponse(page []byte) (*playerResponse, error) {
	idx := bytes.Index(page, []byte(playerResponseMarker))
	if idx < 0 {
		return nil, ErrPlayerResponse
	}
	raw := extractJSONObject(page[idx+len(playerResponseMarker):])
	if raw == nil {
		return nil, ErrPlayerResponse
	}

	var player playerResponse
	if err := json.Unmarshal(raw, &player); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPlayerResponse, err)
	}
	return &player, nil
}

// extractJSONObject returns the balanced {...} object at the start of b.
func extractJSONObject(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	escaped := false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}

// pickTrack prefers a manual track in lang, then an auto-generated one.
// Regional variants ("en-GB") match their base language.
func pickTrack(tracks []captionTrack, lang string) (captionTrack, bool) {
	matches := func(code string) bool {
		return code == lang || strings.HasPrefix(code, lang+"-")
	}
	for _, t := range tracks {
		if matches(t.LanguageCode) && t.Kind != "asr" {
			return t, true
		}
	}
	for _, t := range tracks {
		if matches(t.LanguageCode) {
			return t, true
		}
	}
	return captionTrack{}, false
}

// parseTimedText flattens timedtext XML into one space-separated string.
func parseTimedText(body []byte) (string, int, error) {
	var tt timedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return "", 0, fmt.Errorf("parse timedtext XML: %w", err)
	}

	parts := make([]string, 0, len(tt.Lines))
	for _, line := range tt.Lines {
		// Caption text arrives entity-encoded a second time inside the XML.
		text := html.UnescapeString(line.Text)
		text = strings.TrimSpace(tagRe.ReplaceAllString(text, ""))
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " "), len(parts), nil
}
