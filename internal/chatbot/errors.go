package chatbot

import "errors"

var (
	// ErrInvalidVideoID means no video identifier could be extracted from the input.
	ErrInvalidVideoID = errors.New("no video identifier found")
	// ErrNoTranscript means the video has no usable transcript; nothing was indexed.
	ErrNoTranscript = errors.New("no transcript found for this video")
	// ErrNoSession means a question arrived before any video was processed.
	ErrNoSession = errors.New("no video processed yet")
)
