package audio

import (
	"errors"
	"math"
	"testing"
)

func TestDecodeClipWAV(t *testing.T) {
	data := makeWAV(44100, 0.5, 8000)

	c, err := decodeClip(data)
	if err != nil {
		t.Fatalf("decodeClip failed: %v", err)
	}
	if c.rate != 44100 {
		t.Errorf("rate = %d, want 44100", c.rate)
	}

	wantFrames := int64(22050)
	if diff := c.frames() - wantFrames; diff < -2 || diff > 2 {
		t.Errorf("frames = %d, want about %d", c.frames(), wantFrames)
	}
	if math.Abs(c.seconds()-0.5) > 0.01 {
		t.Errorf("seconds = %v, want about 0.5", c.seconds())
	}

	// Mono sources decode to identical left and right channels.
	mid := c.samples[len(c.samples)/2]
	if mid[0] != mid[1] {
		t.Errorf("expected symmetric stereo frames, got %v", mid)
	}
	if mid[0] == 0 {
		t.Error("expected non-silent samples from constant tone")
	}
}

func TestDecodeClipRejectsGarbage(t *testing.T) {
	for name, payload := range map[string][]byte{
		"empty":     nil,
		"text":      []byte("definitely not audio data, not even close"),
		"truncated": makeWAV(44100, 0.5, 8000)[:10],
	} {
		if _, err := decodeClip(payload); !errors.Is(err, ErrDecode) {
			t.Errorf("%s: expected ErrDecode, got %v", name, err)
		}
	}
}

func TestConvertRateResamples(t *testing.T) {
	data := makeWAV(22050, 0.25, 8000)
	c, err := decodeClip(data)
	if err != nil {
		t.Fatalf("decodeClip failed: %v", err)
	}

	converted := c.convertRate(44100)
	if converted.rate != 44100 {
		t.Fatalf("rate = %d, want 44100", converted.rate)
	}
	if math.Abs(converted.seconds()-c.seconds()) > 0.01 {
		t.Errorf("duration changed on resample: %v -> %v", c.seconds(), converted.seconds())
	}
}

func TestConvertRateSameRateIsIdentity(t *testing.T) {
	c, err := decodeClip(makeWAV(44100, 0.1, 4000))
	if err != nil {
		t.Fatalf("decodeClip failed: %v", err)
	}
	if got := c.convertRate(44100); got != c {
		t.Fatal("matching rates should return the same clip")
	}
}
