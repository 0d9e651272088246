package transcript

import (
	"net/url"
	"regexp"
	"strings"
)

var videoIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// pathPrefixes are URL path forms that carry the id as the next segment.
var pathPrefixes = []string{"/shorts/", "/embed/", "/live/", "/v/"}

// ExtractVideoID returns the video identifier from a watch URL, a short link,
// or a bare 11-character id. The v= query parameter wins over everything
// else: the id is whatever follows the first "v=" up to the next "&".
// It reports false when no identifier can be found.
func ExtractVideoID(input string) (string, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", false
	}

	if _, after, found := strings.Cut(input, "v="); found {
		id, _, _ := strings.Cut(after, "&")
		id, _, _ = strings.Cut(id, "#")
		if id == "" {
			return "", false
		}
		return id, true
	}

	if videoIDRe.MatchString(input) {
		return input, true
	}

	raw := input
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}

	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	host = strings.TrimPrefix(host, "m.")
	switch host {
	case "youtu.be":
		id := strings.Trim(u.Path, "/")
		if videoIDRe.MatchString(id) {
			return id, true
		}
	case "youtube.com", "music.youtube.com", "youtube-nocookie.com":
		for _, prefix := range pathPrefixes {
			if rest, ok := strings.CutPrefix(u.Path, prefix); ok {
				id, _, _ := strings.Cut(rest, "/")
				if videoIDRe.MatchString(id) {
					return id, true
				}
			}
		}
	}

	return "", false
}
