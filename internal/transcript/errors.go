package transcript

import "errors"

var (
	// ErrTranscriptsDisabled means the video has no caption tracks at all.
	ErrTranscriptsDisabled = errors.New("transcripts disabled for this video")
	// ErrNoTrack means captions exist but none in the requested language.
	ErrNoTrack = errors.New("no transcript in requested language")
	// ErrVideoUnavailable means YouTube refused to play the video.
	ErrVideoUnavailable = errors.New("video unavailable")
	// ErrPlayerResponse means the watch page did not contain a usable player response.
	ErrPlayerResponse = errors.New("player response not found")
	// ErrCacheMiss is returned by Cache.Get when nothing is stored for the key.
	ErrCacheMiss = errors.New("transcript not cached")
)
