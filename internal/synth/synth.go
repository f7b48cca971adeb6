package synth

import (
	"context"
	"errors"
	"io"
)

// Config carries per-request synthesis parameters. Voice and LanguageCode
// map one narration chunk to the backend voice that reads it.
type Config struct {
	APIKey       string
	Endpoint     string
	Model        string
	Voice        string
	LanguageCode string
	Format       string
	SampleRate   int
	Volume       int
	Rate         float64
	Pitch        float64
}

// Provider opens synthesis streams against a speech backend.
type Provider interface {
	Start(ctx context.Context, cfg Config) (Stream, error)
}

// Stream is one synthesis task. Text is written in, encoded audio is read
// out of AudioReader; Close signals that all text has been sent and waits
// for the backend to finish.
type Stream interface {
	WriteTextChunk(ctx context.Context, text string) error
	Close(ctx context.Context) error
	AudioReader() io.ReadCloser
	SampleRate() int
	Channels() int
}

var (
	ErrTransient  = errors.New("synthesis transient error")
	ErrAuth       = errors.New("synthesis auth error")
	ErrBadRequest = errors.New("synthesis bad request")
)
