package audio

import (
	"fmt"
	"sync"
)

// Channel classifies a track for volume purposes.
type Channel string

const (
	ChannelNarration Channel = "narration"
	ChannelSFX       Channel = "sfx"
	ChannelMusic     Channel = "music"
)

func ParseChannel(s string) (Channel, error) {
	switch Channel(s) {
	case ChannelNarration, ChannelSFX, ChannelMusic:
		return Channel(s), nil
	}
	return "", fmt.Errorf("%w: unknown channel %q", ErrValidation, s)
}

// VolumeSnapshot is the immutable per-channel gain set a session is
// scheduled with.
type VolumeSnapshot map[Channel]float64

// ChannelVolumeState holds the live per-channel gains. It is shared and
// externally mutable; the mixer only ever reads it through Snapshot at
// schedule time, so mid-session mutation affects future sessions only.
type ChannelVolumeState struct {
	mu    sync.Mutex
	gains map[Channel]float64
}

// NewChannelVolumeState returns the default gains: full narration, sfx
// backed off, music well under the voice.
func NewChannelVolumeState() *ChannelVolumeState {
	return &ChannelVolumeState{
		gains: map[Channel]float64{
			ChannelNarration: 1.0,
			ChannelSFX:       0.7,
			ChannelMusic:     0.3,
		},
	}
}

// NewChannelVolumeStateWith seeds the state with explicit gains, clamped
// to [0,1].
func NewChannelVolumeStateWith(narration, sfx, music float64) *ChannelVolumeState {
	s := NewChannelVolumeState()
	s.Set(ChannelNarration, narration)
	s.Set(ChannelSFX, sfx)
	s.Set(ChannelMusic, music)
	return s
}

func (s *ChannelVolumeState) Get(ch Channel) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gains[ch]
}

// Set stores a gain for a channel, clamped to [0,1]. Unknown channels are
// ignored.
func (s *ChannelVolumeState) Set(ch Channel, gain float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.gains[ch]; !ok {
		return
	}
	s.gains[ch] = clampUnit(gain)
}

func (s *ChannelVolumeState) Snapshot() VolumeSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := make(VolumeSnapshot, len(s.gains))
	for ch, gain := range s.gains {
		snap[ch] = gain
	}
	return snap
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
