// Package translate localizes narration text before synthesis. Translation
// is best-effort: callers fall back to the untranslated text on any error.
package translate

import (
	"context"
	"errors"
)

// ErrTranslation wraps every failure from the translation backend so
// callers can recognize (and deliberately ignore) the whole class.
var ErrTranslation = errors.New("translation error")

type Translator interface {
	// Translate renders text into the language identified by languageCode
	// (BCP 47, e.g. "fr-FR"). It returns the translated text, or an error
	// wrapping ErrTranslation.
	Translate(ctx context.Context, text string, languageCode string) (string, error)
}
