package scene

import (
	"fmt"
	"strings"
)

// NarrationMode selects which parts of a scene the narration script is
// assembled from.
type NarrationMode string

const (
	ModeSynopsis NarrationMode = "synopsis"
	ModeFull     NarrationMode = "full"
	ModeBeats    NarrationMode = "beats"
)

// BuildNarrationScript assembles the single spoken-text string for a scene.
//
// Beats mode with no beats falls through to synopsis mode. An unknown mode
// is treated as synopsis.
func BuildNarrationScript(s Scene, mode NarrationMode) string {
	if mode == ModeBeats && len(s.Beats) > 0 {
		return buildBeatsScript(s.Beats)
	}

	if mode == ModeFull {
		return buildFullScript(s)
	}

	return buildSynopsisScript(s)
}

func buildSynopsisScript(s Scene) string {
	base := baseSynopsis(s)
	if s.Logline != "" {
		return s.Logline + ". " + base
	}
	return base
}

func buildFullScript(s Scene) string {
	parts := make([]string, 0, 4)
	if s.Title != "" {
		parts = append(parts, s.Title+".")
	}
	if s.Logline != "" {
		parts = append(parts, s.Logline)
	}
	if base := baseSynopsis(s); base != "" {
		parts = append(parts, base)
	}
	if len(s.Themes) > 0 {
		parts = append(parts, "Themes: "+strings.Join(s.Themes, ", "))
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

func buildBeatsScript(beats []Beat) string {
	lines := make([]string, 0, len(beats))
	for i, beat := range beats {
		title := beat.Title
		if title == "" {
			title = "Beat"
		}
		summary := beat.Synopsis
		if summary == "" {
			summary = beat.Intent
		}
		lines = append(lines, fmt.Sprintf("%d. %s — %s", i+1, title, summary))
	}
	return strings.Join(lines, "\n")
}

func baseSynopsis(s Scene) string {
	if s.Synopsis != "" {
		return s.Synopsis
	}
	return s.Content
}
