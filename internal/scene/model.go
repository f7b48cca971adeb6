// Package scene holds the read-only scene text model and the pure
// text-to-timing functions built on top of it.
package scene

// DialogueLine is one spoken line attributed to a character.
type DialogueLine struct {
	Speaker string `json:"speaker"`
	Line    string `json:"line"`
}

// Beat is one structural story beat inside a scene.
type Beat struct {
	Title    string  `json:"title"`
	Intent   string  `json:"intent"`
	Synopsis string  `json:"synopsis"`
	Minutes  float64 `json:"minutes"`
}

// Scene is the read-only text model a scene's audio is produced from.
// All fields are optional; the estimator and script builder tolerate
// whatever subset the authoring tool filled in.
type Scene struct {
	Title         string         `json:"title"`
	Logline       string         `json:"logline"`
	Synopsis      string         `json:"synopsis"`
	Content       string         `json:"content"`
	Description   string         `json:"description"`
	NarrationText string         `json:"narration_text"`
	ActionText    string         `json:"action_text"`
	Dialogue      []DialogueLine `json:"dialogue"`
	Beats         []Beat         `json:"beats"`
	Themes        []string       `json:"themes"`
}
