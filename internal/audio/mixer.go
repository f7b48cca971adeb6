package audio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/anderson0531/sceneflowai-audio/internal/assets"
	"github.com/anderson0531/sceneflowai-audio/internal/logging"
)

// Track references one pre-rendered audio asset and where it sits on the
// scene timeline. Immutable once handed to Play.
type Track struct {
	Channel            Channel  `json:"channel"`
	SourceURL          string   `json:"source_url"`
	StartOffsetSeconds float64  `json:"start_offset_seconds"`
	VolumeOverride     *float64 `json:"volume_override,omitempty"`
}

// MixerConfig tunes session teardown.
type MixerConfig struct {
	// TeardownMargin is added past the computed session duration before
	// the session tears itself down.
	TeardownMargin time.Duration
}

func DefaultMixerConfig() *MixerConfig {
	return &MixerConfig{TeardownMargin: 100 * time.Millisecond}
}

// SceneMixer plays a scene's narration, sfx and music tracks as one
// session. At most one session is active per mixer; starting a new one
// disposes the prior session's graph first.
type SceneMixer struct {
	fetcher   assets.Fetcher
	volumes   *ChannelVolumeState
	newOutput OutputFactory
	margin    time.Duration

	mu     sync.Mutex
	active *playbackSession
}

func NewSceneMixer(fetcher assets.Fetcher, volumes *ChannelVolumeState, factory OutputFactory, cfg *MixerConfig) *SceneMixer {
	if cfg == nil {
		cfg = DefaultMixerConfig()
	}
	if volumes == nil {
		volumes = NewChannelVolumeState()
	}
	return &SceneMixer{
		fetcher:   fetcher,
		volumes:   volumes,
		newOutput: factory,
		margin:    cfg.TeardownMargin,
	}
}

// Volumes exposes the live channel gains read at schedule time.
func (m *SceneMixer) Volumes() *ChannelVolumeState {
	return m.volumes
}

// Play fetches, decodes and schedules every track, then blocks until the
// session finishes naturally or is stopped. A failed play leaves no
// partial state; the next Play starts the scene from the beginning.
func (m *SceneMixer) Play(ctx context.Context, tracks []Track) error {
	if len(tracks) == 0 {
		return fmt.Errorf("%w: no tracks to play", ErrValidation)
	}
	for i, t := range tracks {
		if _, err := ParseChannel(string(t.Channel)); err != nil {
			return fmt.Errorf("%w: track %d: unknown channel %q", ErrValidation, i, t.Channel)
		}
		if t.StartOffsetSeconds < 0 {
			return fmt.Errorf("%w: track %d: negative start offset", ErrValidation, i)
		}
	}

	m.mu.Lock()
	if m.active != nil {
		m.active.dispose()
		m.active = nil
	}
	out, err := m.newOutput()
	if err != nil {
		m.mu.Unlock()
		return fmt.Errorf("open output: %w", err)
	}
	session := newPlaybackSession(out, m.volumes.Snapshot())
	m.active = session
	m.mu.Unlock()

	logging.SetSessionID(session.id)
	logging.StartPlayback()
	logging.Infof("mixer: session started with %d tracks", len(tracks))

	var wg sync.WaitGroup
	for i, track := range tracks {
		wg.Add(1)
		go func(i int, t Track) {
			defer wg.Done()
			m.loadTrack(ctx, session, i, t)
		}(i, track)
	}
	wg.Wait()

	if session.sourceCount() == 0 {
		session.dispose()
		m.clearActive(session)
		logging.Errorf("mixer: %v", ErrNoPlayableTracks)
		return ErrNoPlayableTracks
	}

	duration := session.computeDuration()
	if err := out.Start(session.render); err != nil {
		session.dispose()
		m.clearActive(session)
		return fmt.Errorf("start output: %w", err)
	}
	logging.Infof("mixer: playing %d/%d tracks, duration %.2fs",
		session.sourceCount(), len(tracks), duration.Seconds())

	timer := time.NewTimer(duration + m.margin)
	defer timer.Stop()

	select {
	case <-timer.C:
		session.dispose()
	case <-session.done:
		// Stopped explicitly, or displaced by a newer session. Callers
		// cannot tell this apart from a natural finish.
	case <-ctx.Done():
		session.dispose()
		m.clearActive(session)
		return ctx.Err()
	}

	m.clearActive(session)
	return nil
}

func (m *SceneMixer) loadTrack(ctx context.Context, session *playbackSession, index int, t Track) {
	data, err := m.fetcher.Fetch(ctx, t.SourceURL)
	if err != nil {
		logging.Warnf("mixer: skipping track %d (%s): %v", index, t.SourceURL, err)
		return
	}

	decoded, err := decodeClip(data)
	if err != nil {
		logging.Warnf("mixer: skipping track %d (%s): %v", index, t.SourceURL, err)
		return
	}
	decoded = decoded.convertRate(session.out.SampleRate())

	gain := session.gains[t.Channel]
	if t.VolumeOverride != nil {
		gain *= clampUnit(*t.VolumeOverride)
	}

	session.addSource(&trackSource{
		clip:       decoded,
		channel:    t.Channel,
		startFrame: int64(t.StartOffsetSeconds * float64(session.out.SampleRate())),
		gain:       gain,
	})
	logging.Debugf("mixer: track %d scheduled at %.2fs (%.2fs of audio, gain %.2f)",
		index, t.StartOffsetSeconds, decoded.seconds(), gain)
}

// Stop halts every scheduled source and disposes the session graph.
// Idempotent: stopping twice, or after natural completion, is a no-op.
func (m *SceneMixer) Stop() {
	m.mu.Lock()
	session := m.active
	m.active = nil
	m.mu.Unlock()

	if session != nil {
		session.dispose()
		logging.Infof("mixer: session stopped")
	}
}

// Done exposes the active session's completion signal. With no active
// session it returns an already-resolved channel.
func (m *SceneMixer) Done() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active != nil {
		return m.active.done
	}
	resolved := make(chan struct{})
	close(resolved)
	return resolved
}

// Duration reports the active session's total length in seconds, 0 when
// idle. Available once scheduling finished.
func (m *SceneMixer) Duration() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return 0
	}
	return m.active.durationSeconds()
}

// Position reports the playback position in seconds for UI indicators.
func (m *SceneMixer) Position() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return 0
	}
	return m.active.positionSeconds()
}

func (m *SceneMixer) clearActive(session *playbackSession) {
	m.mu.Lock()
	if m.active == session {
		m.active = nil
	}
	m.mu.Unlock()
}
