package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/anderson0531/sceneflowai-audio/internal/logging"
	"github.com/anderson0531/sceneflowai-audio/internal/synth"
	"github.com/anderson0531/sceneflowai-audio/internal/translate"
)

// eofNotifyReader wraps an io.Reader and signals when the consumer drains
// it. The playback loop waits on Done instead of reading the audio twice.
type eofNotifyReader struct {
	reader io.Reader
	doneCh chan struct{}
	once   sync.Once
}

func newEOFNotifyReader(r io.Reader) *eofNotifyReader {
	return &eofNotifyReader{
		reader: r,
		doneCh: make(chan struct{}),
	}
}

func (r *eofNotifyReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	if err != nil {
		r.once.Do(func() { close(r.doneCh) })
	}
	return n, err
}

func (r *eofNotifyReader) Done() <-chan struct{} {
	return r.doneCh
}

// Close resolves Done early, for cleanup on interrupt.
func (r *eofNotifyReader) Close() {
	r.once.Do(func() { close(r.doneCh) })
}

// VoiceParams selects the backend voice for one narration run.
type VoiceParams struct {
	Voice        string
	LanguageCode string
}

// NarrationStats counts work across the player's lifetime.
type NarrationStats struct {
	TotalChunks  int64
	PlayedChunks int64
	Interrupts   int64
}

// NarratorConfig carries the pieces a narration run needs beyond the
// chunks themselves.
type NarratorConfig struct {
	Synthesis       synth.Config
	DefaultLanguage string
	SynthTimeout    time.Duration
}

// SequentialNarrationPlayer speaks narration chunks strictly in order,
// one synthesis in flight at a time. Each chunk is fully synthesized,
// resampled to the output rate, played to its natural end, then the next
// chunk starts. A new Play or a Stop cancels whatever is in flight.
type SequentialNarrationPlayer struct {
	provider   synth.Provider
	translator translate.Translator
	newOutput  OutputFactory
	config     NarratorConfig

	state *stateMachine

	runMu sync.Mutex // serializes Play runs

	mu      sync.Mutex
	cancel  context.CancelFunc
	current *eofNotifyReader

	totalChunks  int64
	playedChunks int64
	interrupts   int64
}

// NewSequentialNarrationPlayer wires a player. translator may be nil, in
// which case every chunk is spoken in its original language.
func NewSequentialNarrationPlayer(provider synth.Provider, translator translate.Translator, factory OutputFactory, config NarratorConfig) *SequentialNarrationPlayer {
	if config.SynthTimeout <= 0 {
		config.SynthTimeout = 30 * time.Second
	}
	if config.DefaultLanguage == "" {
		config.DefaultLanguage = "en-US"
	}
	return &SequentialNarrationPlayer{
		provider:   provider,
		translator: translator,
		newOutput:  factory,
		config:     config,
		state:      newStateMachine(),
	}
}

func (p *SequentialNarrationPlayer) State() PlayerState {
	return p.state.Current()
}

func (p *SequentialNarrationPlayer) Stats() NarrationStats {
	return NarrationStats{
		TotalChunks:  atomic.LoadInt64(&p.totalChunks),
		PlayedChunks: atomic.LoadInt64(&p.playedChunks),
		Interrupts:   atomic.LoadInt64(&p.interrupts),
	}
}

// Play narrates chunks in order and blocks until the last chunk finishes,
// the run is cancelled, or synthesis fails. Calling Play while a previous
// run is active interrupts that run first.
func (p *SequentialNarrationPlayer) Play(ctx context.Context, chunks []string, params VoiceParams) error {
	if len(chunks) == 0 {
		return fmt.Errorf("%w: no narration chunks", ErrValidation)
	}

	p.interrupt()
	p.runMu.Lock()
	defer p.runMu.Unlock()

	if !p.state.Transition(StateLoading) {
		return fmt.Errorf("%w: player in state %q cannot start", ErrValidation, p.state.Current())
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	p.cancel = cancel
	p.mu.Unlock()
	defer func() {
		cancel()
		p.mu.Lock()
		if p.cancel != nil {
			p.cancel = nil
		}
		p.current = nil
		p.mu.Unlock()
	}()

	out, err := p.newOutput()
	if err != nil {
		p.state.Transition(StateFailed)
		return fmt.Errorf("open output: %w", err)
	}
	defer func() {
		_ = out.Stop()
		_ = out.Close()
	}()
	if err := out.Start(p.render); err != nil {
		p.state.Transition(StateFailed)
		return fmt.Errorf("start output: %w", err)
	}

	atomic.AddInt64(&p.totalChunks, int64(len(chunks)))
	logging.Infof("narrator: run started, %d chunks, voice=%s lang=%s",
		len(chunks), params.Voice, params.LanguageCode)

	for i, chunk := range chunks {
		if runCtx.Err() != nil {
			p.state.Transition(StateCancelled)
			logging.Infof("narrator: run cancelled at chunk %d/%d", i, len(chunks))
			return nil
		}

		text := p.translateChunk(runCtx, chunk, params.LanguageCode)

		reader, origReader, err := p.synthesizeChunk(runCtx, text, params, out.SampleRate())
		if err != nil {
			if runCtx.Err() != nil {
				p.state.Transition(StateCancelled)
				logging.Infof("narrator: run cancelled during synthesis of chunk %d", i+1)
				return nil
			}
			p.state.Transition(StateFailed)
			return fmt.Errorf("%w: chunk %d of %d: %v", ErrSynthesis, i+1, len(chunks), err)
		}

		p.state.Transition(StatePlaying)
		p.playReader(runCtx, reader, origReader)
		atomic.AddInt64(&p.playedChunks, 1)

		if i < len(chunks)-1 {
			p.state.Transition(StateLoading)
		}
	}

	if runCtx.Err() != nil {
		p.state.Transition(StateCancelled)
		return nil
	}
	p.state.Transition(StateCompleted)
	logging.Infof("narrator: run completed, %d chunks played", len(chunks))
	return nil
}

// Stop cancels the in-flight run, if any. Safe to call at any time, from
// any goroutine, any number of times.
func (p *SequentialNarrationPlayer) Stop() {
	if p.interrupt() {
		logging.Infof("narrator: stop requested")
	}
}

func (p *SequentialNarrationPlayer) interrupt() bool {
	p.mu.Lock()
	cancel := p.cancel
	current := p.current
	p.cancel = nil
	p.mu.Unlock()

	if cancel == nil {
		return false
	}
	cancel()
	if current != nil {
		current.Close()
	}
	atomic.AddInt64(&p.interrupts, 1)
	return true
}

// translateChunk renders the chunk into the requested language. Failures
// fall back to the original text so narration continues untranslated.
func (p *SequentialNarrationPlayer) translateChunk(ctx context.Context, chunk, languageCode string) string {
	if p.translator == nil || languageCode == "" || strings.EqualFold(languageCode, p.config.DefaultLanguage) {
		return chunk
	}
	translated, err := p.translator.Translate(ctx, chunk, languageCode)
	if err != nil {
		logging.Warnf("narrator: translation to %s failed, using original text: %v", languageCode, err)
		return chunk
	}
	return translated
}

// synthesizeChunk runs one synthesis task to completion and returns the
// audio as a reader at the output sample rate. Transient network errors
// get a single retry; context cancellation never does.
func (p *SequentialNarrationPlayer) synthesizeChunk(ctx context.Context, text string, params VoiceParams, outputRate int) (io.Reader, io.Closer, error) {
	cfg := p.config.Synthesis
	if params.Voice != "" {
		cfg.Voice = params.Voice
	}
	if params.LanguageCode != "" {
		cfg.LanguageCode = params.LanguageCode
	}

	synthCtx, cancel := context.WithTimeout(ctx, p.config.SynthTimeout)
	defer cancel()

	stream, err := p.provider.Start(synthCtx, cfg)
	if err != nil {
		if !isRetryableSynthError(err) {
			return nil, nil, err
		}
		logging.Warnf("narrator: synthesis start failed, retrying once: %v", err)
		time.Sleep(300 * time.Millisecond)
		stream, err = p.provider.Start(synthCtx, cfg)
		if err != nil {
			return nil, nil, err
		}
	}

	if err := stream.WriteTextChunk(synthCtx, text); err != nil {
		_ = stream.Close(synthCtx)
		return nil, nil, err
	}
	if err := stream.Close(synthCtx); err != nil {
		return nil, nil, err
	}

	audioReader := stream.AudioReader()
	var reader io.Reader = audioReader
	if rate := stream.SampleRate(); rate != outputRate {
		logging.Debugf("narrator: resampling synthesis audio %d Hz -> %d Hz", rate, outputRate)
		reader = NewResamplingReader(audioReader, rate, outputRate, stream.Channels(), NewLinearResampler())
	}
	return reader, audioReader, nil
}

// playReader hands the chunk to the render callback and waits until the
// output drains it or the run is cancelled.
func (p *SequentialNarrationPlayer) playReader(ctx context.Context, reader io.Reader, origReader io.Closer) {
	notify := newEOFNotifyReader(reader)

	p.mu.Lock()
	p.current = notify
	p.mu.Unlock()

	select {
	case <-ctx.Done():
		notify.Close()
	case <-notify.Done():
	}

	p.mu.Lock()
	p.current = nil
	p.mu.Unlock()

	if origReader != nil {
		_ = origReader.Close()
	}
}

// render is the output callback for narration runs. It pulls from the
// chunk currently playing; between chunks the output stays silent.
func (p *SequentialNarrationPlayer) render(out [][]float32) {
	p.mu.Lock()
	current := p.current
	p.mu.Unlock()

	if current == nil {
		return
	}
	mixInt16Stream(current, out, 1.0)
}

func isRetryableSynthError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, synth.ErrTransient) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
