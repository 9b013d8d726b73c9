// Package langdetect guesses the language of a piece of text. It backs the
// translation endpoint when the caller supplies no source language.
package langdetect

import (
	"strings"

	"github.com/abadojack/whatlanggo"
)

// Detect returns the ISO-639-1 code of text's language. ok is false when
// the text is blank, the detection is unreliable, or the detected language
// has no two-letter code; callers should fall back to the auto sentinel.
func Detect(text string) (code string, ok bool) {
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	info := whatlanggo.Detect(text)
	code = info.Lang.Iso6391()
	if code == "" || !info.IsReliable() {
		return "", false
	}
	return code, true
}
