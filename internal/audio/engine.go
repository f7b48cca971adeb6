package audio

// Callback fills one buffer of output frames. out is channel-major:
// out[0] is the left channel, out[1] the right.
type Callback func(out [][]float32)

// Output is one opened audio output stream. Playback logic talks to this
// interface so it runs identically against the portaudio device and the
// in-process fakes used by tests.
type Output interface {
	Start(cb Callback) error
	Stop() error
	Close() error
	SampleRate() int
	Channels() int
}

// OutputFactory opens a fresh output stream. Each playback session owns
// exactly one output for its lifetime.
type OutputFactory func() (Output, error)
