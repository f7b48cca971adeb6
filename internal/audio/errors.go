package audio

import "errors"

// Playback error classes. Asset fetch failures carry assets.ErrFetch and
// translation failures carry translate.ErrTranslation; both are produced
// by their own packages.
var (
	// ErrValidation rejects a playback request before any resources are
	// acquired (e.g. an empty track list).
	ErrValidation = errors.New("validation error")

	// ErrDecode marks a malformed or unsupported audio payload.
	ErrDecode = errors.New("decode error")

	// ErrSynthesis surfaces a speech-backend failure; it aborts the rest
	// of a narration sequence.
	ErrSynthesis = errors.New("synthesis failure")

	// ErrNoPlayableTracks is the hard failure raised when every track of a
	// session failed to fetch or decode.
	ErrNoPlayableTracks = errors.New("failed to load any audio tracks")
)
