package scene

import (
	"math"
	"strings"
)

const (
	// wordsPerMinute matches the pacing assumption used by the narration
	// backend; downstream clip planning depends on it staying in sync.
	wordsPerMinute = 150.0

	// clipQuantum is the clip length unit scene durations are rounded to.
	clipQuantum = 8.0

	perClipPaddingSeconds = 0.5
)

// EstimateDuration returns the estimated spoken duration of a scene in
// seconds, always a positive multiple of the clip quantum. It is pure and
// deterministic: the same scene always yields the same duration.
func EstimateDuration(s Scene) float64 {
	words := countWords(s.NarrationText) + countWords(s.ActionText)
	for _, line := range s.Dialogue {
		words += countWords(line.Line)
	}

	audioSeconds := float64(words) / wordsPerMinute * 60

	raw := audioSeconds + bufferSeconds(s.Description)
	clipCount := math.Ceil(raw / clipQuantum)
	duration := raw + clipCount*perClipPaddingSeconds

	return math.Ceil(duration/clipQuantum) * clipQuantum
}

// bufferSeconds adds lead-in/lead-out headroom, stepped by how much visual
// description the scene carries.
func bufferSeconds(description string) float64 {
	length := len([]rune(description))
	switch {
	case length > 300:
		return 5
	case length > 200:
		return 4
	case length > 100:
		return 3
	default:
		return 2
	}
}

func countWords(text string) int {
	return len(strings.Fields(text))
}
