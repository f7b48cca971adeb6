package audio

import (
	"errors"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/anderson0531/sceneflowai-audio/internal/logging"
)

const defaultFramesPerBuffer = 1024

// PortAudioOutput renders to the default output device.
type PortAudioOutput struct {
	sampleRate int
	channels   int

	mu      sync.Mutex
	stream  *portaudio.Stream
	cb      Callback
	started bool
	closed  bool
}

// NewPortAudioFactory returns an OutputFactory that opens the default
// device at the given rate and channel count.
func NewPortAudioFactory(sampleRate, channels int) OutputFactory {
	return func() (Output, error) {
		return NewPortAudioOutput(sampleRate, channels)
	}
}

func NewPortAudioOutput(sampleRate, channels int) (*PortAudioOutput, error) {
	if sampleRate <= 0 {
		sampleRate = 44100
	}
	if channels <= 0 {
		channels = 2
	}

	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}

	o := &PortAudioOutput{
		sampleRate: sampleRate,
		channels:   channels,
	}

	stream, err := portaudio.OpenDefaultStream(0, channels, float64(sampleRate), defaultFramesPerBuffer, o.render)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}
	o.stream = stream
	return o, nil
}

func (o *PortAudioOutput) Start(cb Callback) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return errors.New("output closed")
	}
	if o.started {
		return errors.New("output already started")
	}
	o.cb = cb
	o.started = true
	return o.stream.Start()
}

func (o *PortAudioOutput) Stop() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.started || o.closed {
		return nil
	}
	o.started = false
	return o.stream.Stop()
}

func (o *PortAudioOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil
	}
	o.closed = true
	o.started = false

	if err := o.stream.Close(); err != nil {
		logging.Errorf("portaudio: close stream: %v", err)
	}
	portaudio.Terminate()
	return nil
}

func (o *PortAudioOutput) SampleRate() int { return o.sampleRate }
func (o *PortAudioOutput) Channels() int   { return o.channels }

func (o *PortAudioOutput) render(out [][]float32) {
	for ch := range out {
		for i := range out[ch] {
			out[ch][i] = 0
		}
	}

	o.mu.Lock()
	cb := o.cb
	started := o.started
	o.mu.Unlock()

	if started && cb != nil {
		cb(out)
	}
}
