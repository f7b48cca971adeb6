package scene

import (
	"math"
	"strings"
	"testing"
)

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func TestEstimateDuration_TypicalScene(t *testing.T) {
	// 150 words at 150 wpm is 60s of audio; a 50-char description adds a 2s
	// buffer; 62s raw needs 8 clips, 0.5s padding each, so 66s rounds to 72.
	s := Scene{
		NarrationText: words(100),
		Dialogue: []DialogueLine{
			{Speaker: "AVA", Line: words(50)},
		},
		Description: strings.Repeat("x", 50),
	}
	if got := EstimateDuration(s); got != 72 {
		t.Fatalf("EstimateDuration() = %v, want 72", got)
	}
}

func TestEstimateDuration_ZeroWordsStillOneClip(t *testing.T) {
	if got := EstimateDuration(Scene{}); got != 8 {
		t.Fatalf("EstimateDuration(empty) = %v, want 8", got)
	}
}

func TestEstimateDuration_AlwaysPositiveMultipleOfEight(t *testing.T) {
	for _, wordCount := range []int{0, 1, 10, 149, 150, 151, 500, 2000} {
		s := Scene{NarrationText: words(wordCount)}
		got := EstimateDuration(s)
		if got <= 0 {
			t.Fatalf("words=%d: duration %v not positive", wordCount, got)
		}
		if math.Mod(got, 8) != 0 {
			t.Fatalf("words=%d: duration %v not a multiple of 8", wordCount, got)
		}
	}
}

func TestEstimateDuration_MonotonicInWordCount(t *testing.T) {
	desc := strings.Repeat("x", 150)
	prev := 0.0
	for wordCount := 0; wordCount <= 1000; wordCount += 25 {
		got := EstimateDuration(Scene{NarrationText: words(wordCount), Description: desc})
		if got < prev {
			t.Fatalf("duration decreased from %v to %v at words=%d", prev, got, wordCount)
		}
		prev = got
	}
}

func TestEstimateDuration_Deterministic(t *testing.T) {
	s := Scene{
		NarrationText: words(42),
		ActionText:    words(13),
		Description:   strings.Repeat("d", 250),
	}
	first := EstimateDuration(s)
	for i := 0; i < 5; i++ {
		if got := EstimateDuration(s); got != first {
			t.Fatalf("EstimateDuration not deterministic: %v then %v", first, got)
		}
	}
}

func TestBufferSeconds_Tiers(t *testing.T) {
	cases := []struct {
		length int
		want   float64
	}{
		{0, 2},
		{100, 2},
		{101, 3},
		{200, 3},
		{201, 4},
		{300, 4},
		{301, 5},
		{1000, 5},
	}
	for _, tc := range cases {
		got := bufferSeconds(strings.Repeat("a", tc.length))
		if got != tc.want {
			t.Fatalf("bufferSeconds(len=%d) = %v, want %v", tc.length, got, tc.want)
		}
	}
}

func TestCountWords_CollapsesWhitespace(t *testing.T) {
	if got := countWords("  one\ttwo \n three  "); got != 3 {
		t.Fatalf("countWords() = %d, want 3", got)
	}
}
