package audio

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// trackSource is one decoded track scheduled into a session: its clip,
// its absolute start frame on the session clock, and its composed gain.
type trackSource struct {
	clip       *clip
	channel    Channel
	startFrame int64
	gain       float64
}

// playbackSession owns everything one Play call acquires: the output
// stream, the channel-gain snapshot, and the scheduled sources. Disposal
// is a single structured operation; the session never leaks a resource
// for a sibling to clean up.
type playbackSession struct {
	id    string
	out   Output
	gains VolumeSnapshot

	mu      sync.Mutex
	sources []*trackSource

	frame          int64 // atomic; frames rendered since session start
	durationFrames int64 // atomic; set once after scheduling

	done        chan struct{}
	disposeOnce sync.Once
}

func newPlaybackSession(out Output, gains VolumeSnapshot) *playbackSession {
	return &playbackSession{
		id:    uuid.NewString(),
		out:   out,
		gains: gains,
		done:  make(chan struct{}),
	}
}

func (s *playbackSession) addSource(src *trackSource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources = append(s.sources, src)
}

func (s *playbackSession) sourceCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sources)
}

// computeDuration fixes the session length as the furthest end among the
// scheduled sources. Called once, after every decode attempt finished.
func (s *playbackSession) computeDuration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	var maxEnd int64
	for _, src := range s.sources {
		if end := src.startFrame + src.clip.frames(); end > maxEnd {
			maxEnd = end
		}
	}
	atomic.StoreInt64(&s.durationFrames, maxEnd)
	return s.framesToDuration(maxEnd)
}

func (s *playbackSession) durationSeconds() float64 {
	return s.framesToDuration(atomic.LoadInt64(&s.durationFrames)).Seconds()
}

func (s *playbackSession) positionSeconds() float64 {
	pos := atomic.LoadInt64(&s.frame)
	if limit := atomic.LoadInt64(&s.durationFrames); pos > limit {
		pos = limit
	}
	return s.framesToDuration(pos).Seconds()
}

func (s *playbackSession) framesToDuration(frames int64) time.Duration {
	rate := s.out.SampleRate()
	if rate <= 0 {
		return 0
	}
	return time.Duration(float64(frames) / float64(rate) * float64(time.Second))
}

// render is the session's output callback. Relative track timing comes
// from comparing each source's start frame against the session frame
// clock, not from goroutine completion order.
func (s *playbackSession) render(out [][]float32) {
	if len(out) == 0 || len(out[0]) == 0 {
		return
	}
	frames := int64(len(out[0]))
	base := atomic.LoadInt64(&s.frame)

	s.mu.Lock()
	sources := s.sources
	s.mu.Unlock()

	for _, src := range sources {
		clipFrames := src.clip.frames()
		for i := int64(0); i < frames; i++ {
			pos := base + i - src.startFrame
			if pos < 0 || pos >= clipFrames {
				continue
			}
			left := float32(src.clip.samples[pos][0] * src.gain)
			right := float32(src.clip.samples[pos][1] * src.gain)

			out[0][i] = clamp32(out[0][i] + left)
			if len(out) > 1 {
				out[1][i] = clamp32(out[1][i] + right)
			}
		}
	}

	atomic.AddInt64(&s.frame, frames)
}

// dispose stops and closes the output and resolves the completion signal.
// Safe to call any number of times, from any goroutine.
func (s *playbackSession) dispose() {
	s.disposeOnce.Do(func() {
		_ = s.out.Stop()
		_ = s.out.Close()
		close(s.done)
	})
}
