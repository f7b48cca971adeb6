package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/anderson0531/sceneflowai-audio/internal/synth"
)

// fakeOutput stands in for the portaudio device. Start spawns a pump
// goroutine that drives the render callback with small silent buffers at
// a few thousand frames per millisecond, so tests run faster than
// realtime while exercising the same callback path.
type fakeOutput struct {
	sampleRate int
	channels   int
	startErr   error

	mu         sync.Mutex
	started    bool
	stopCalled int
	closed     bool
	stopCh     chan struct{}
	pumpDone   chan struct{}
}

func newFakeOutput() *fakeOutput {
	return &fakeOutput{sampleRate: 44100, channels: 2}
}

func (o *fakeOutput) Start(cb Callback) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.startErr != nil {
		return o.startErr
	}
	if o.started {
		return fmt.Errorf("output already started")
	}
	o.started = true
	o.stopCh = make(chan struct{})
	o.pumpDone = make(chan struct{})

	stopCh, pumpDone := o.stopCh, o.pumpDone
	go func() {
		defer close(pumpDone)
		buf := make([][]float32, o.channels)
		for ch := range buf {
			buf[ch] = make([]float32, 4096)
		}
		for {
			select {
			case <-stopCh:
				return
			default:
			}
			for ch := range buf {
				for i := range buf[ch] {
					buf[ch][i] = 0
				}
			}
			cb(buf)
			time.Sleep(time.Millisecond)
		}
	}()
	return nil
}

func (o *fakeOutput) Stop() error {
	o.mu.Lock()
	o.stopCalled++
	var stopCh, pumpDone chan struct{}
	if o.started {
		o.started = false
		stopCh, pumpDone = o.stopCh, o.pumpDone
	}
	o.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-pumpDone
	}
	return nil
}

func (o *fakeOutput) Close() error {
	_ = o.Stop()
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()
	return nil
}

func (o *fakeOutput) SampleRate() int { return o.sampleRate }
func (o *fakeOutput) Channels() int   { return o.channels }

func (o *fakeOutput) isClosed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.closed
}

func (o *fakeOutput) isStarted() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.started
}

// fakeFetcher serves canned payloads by URL.
type fakeFetcher struct {
	mu       sync.Mutex
	payloads map[string][]byte
	errs     map[string]error
	calls    []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		payloads: make(map[string][]byte),
		errs:     make(map[string]error),
	}
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, url)
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	if data, ok := f.payloads[url]; ok {
		return data, nil
	}
	return nil, fmt.Errorf("no payload for %s", url)
}

// fakeProvider hands out fakeStreams and records every start.
type fakeProvider struct {
	mu         sync.Mutex
	startCount int
	startErrs  []error // consumed one per Start, nil means success
	sampleRate int
	blocking   bool
	streams    []*fakeStream
	lastConfig synth.Config
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{sampleRate: 44100}
}

func (p *fakeProvider) Start(ctx context.Context, cfg synth.Config) (synth.Stream, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startCount++
	p.lastConfig = cfg

	if len(p.startErrs) > 0 {
		err := p.startErrs[0]
		p.startErrs = p.startErrs[1:]
		if err != nil {
			return nil, err
		}
	}

	stream := &fakeStream{sampleRate: p.sampleRate, channels: 1, blocking: p.blocking}
	p.streams = append(p.streams, stream)
	return stream, nil
}

func (p *fakeProvider) getStartCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.startCount
}

func (p *fakeProvider) getLastConfig() synth.Config {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastConfig
}

// fakeStream synthesizes 20 bytes of PCM per input rune so tests get a
// short but non-empty audio payload.
type fakeStream struct {
	mu         sync.Mutex
	sampleRate int
	channels   int
	blocking   bool
	text       string
	audio      []byte
	reader     io.ReadCloser
	writeErr   error
}

func (s *fakeStream) WriteTextChunk(ctx context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.text = text
	s.audio = make([]byte, len([]rune(text))*20)
	return nil
}

func (s *fakeStream) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reader = s.buildReader()
	return nil
}

func (s *fakeStream) AudioReader() io.ReadCloser {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reader == nil {
		s.reader = s.buildReader()
	}
	return s.reader
}

func (s *fakeStream) buildReader() io.ReadCloser {
	if s.blocking {
		return &blockingReader{unblock: make(chan struct{})}
	}
	return io.NopCloser(bytes.NewReader(s.audio))
}

func (s *fakeStream) SampleRate() int { return s.sampleRate }
func (s *fakeStream) Channels() int   { return s.channels }

func (s *fakeStream) writtenText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

// blockingReader never yields data until closed, simulating a synthesis
// stream that is still producing audio.
type blockingReader struct {
	unblock chan struct{}
	once    sync.Once
}

func (r *blockingReader) Read(p []byte) (int, error) {
	<-r.unblock
	return 0, io.EOF
}

func (r *blockingReader) Close() error {
	r.once.Do(func() { close(r.unblock) })
	return nil
}

// makeWAV builds a PCM16 mono WAV payload carrying a constant-amplitude
// tone of the given length.
func makeWAV(sampleRate int, seconds float64, amplitude int16) []byte {
	frames := int(float64(sampleRate) * seconds)
	dataLen := frames * 2

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*2))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataLen))
	for i := 0; i < frames; i++ {
		binary.Write(&buf, binary.LittleEndian, amplitude)
	}
	return buf.Bytes()
}

// outputRecorder wraps a fakeOutput list so tests can inspect every
// output a factory produced.
type outputRecorder struct {
	mu      sync.Mutex
	outputs []*fakeOutput
	factErr error
}

func (r *outputRecorder) factory() (Output, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.factErr != nil {
		return nil, r.factErr
	}
	out := newFakeOutput()
	r.outputs = append(r.outputs, out)
	return out, nil
}

func (r *outputRecorder) last() *fakeOutput {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.outputs) == 0 {
		return nil
	}
	return r.outputs[len(r.outputs)-1]
}

func (r *outputRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.outputs)
}
