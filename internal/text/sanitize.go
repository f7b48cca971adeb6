package text

import "regexp"

// Scene synopses and treatments come back from the writing model as
// Markdown; the synthesis backend reads formatting characters aloud, so
// they are stripped before chunking.
var (
	reCodeBlock  = regexp.MustCompile("```[\\s\\S]*?```")
	reInlineCode = regexp.MustCompile("`([^`\n]+)`")
	reBold       = regexp.MustCompile(`\*\*([^\n*]+)\*\*|__([^\n_]+)__`)
	reItalic     = regexp.MustCompile(`\*([^\n*]+)\*|_([^\n_]+)_`)
	reHeading    = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	reImage      = regexp.MustCompile(`!\[([^\]]*)\]\([^\)]+\)`)
	reLink       = regexp.MustCompile(`\[([^\]]+)\]\([^\)]+\)`)
	reBlockquote = regexp.MustCompile(`(?m)^\s*>\s*`)
	reListLeader = regexp.MustCompile(`(?m)^\s*[*\-+]\s+`)
	reNewlines   = regexp.MustCompile(`\n{3,}`)
)

// CleanForSpeech strips Markdown formatting from a narration script,
// keeping only the text a narrator would read.
func CleanForSpeech(script string) string {
	out := reCodeBlock.ReplaceAllString(script, "")
	out = reHeading.ReplaceAllString(out, "")
	out = reBold.ReplaceAllString(out, "$1$2")
	out = reItalic.ReplaceAllString(out, "$1$2")
	out = reInlineCode.ReplaceAllString(out, "$1")
	out = reImage.ReplaceAllString(out, "$1")
	out = reLink.ReplaceAllString(out, "$1")
	out = reBlockquote.ReplaceAllString(out, "")
	out = reListLeader.ReplaceAllString(out, "")
	out = reNewlines.ReplaceAllString(out, "\n\n")
	return out
}
