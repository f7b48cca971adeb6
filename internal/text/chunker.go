// Package text prepares narration scripts for the speech-synthesis backend.
package text

// DefaultChunkMaxRunes is the largest chunk the synthesis backend accepts
// in one request.
const DefaultChunkMaxRunes = 1200

// Chunk splits text into ordered slices of at most maxRunes runes each by
// hard positional slicing. Chunks may split mid-word; concatenating them
// reproduces the input exactly. A non-positive maxRunes falls back to
// DefaultChunkMaxRunes. Empty input yields no chunks.
func Chunk(text string, maxRunes int) []string {
	if text == "" {
		return nil
	}
	if maxRunes <= 0 {
		maxRunes = DefaultChunkMaxRunes
	}

	runes := []rune(text)
	chunks := make([]string, 0, (len(runes)+maxRunes-1)/maxRunes)
	for cursor := 0; cursor < len(runes); cursor += maxRunes {
		end := cursor + maxRunes
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[cursor:end]))
	}
	return chunks
}
