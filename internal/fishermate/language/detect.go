package language

import (
	"errors"
	"strings"

	"github.com/abadojack/whatlanggo"
)

// ErrUndetected is returned when the detector cannot name a language.
var ErrUndetected = errors.New("language: could not detect language")

// WhatlangDetector detects languages with trigram and script analysis.
type WhatlangDetector struct{}

// Detect returns the ISO 639-1 code of the detected language, or the ISO
// 639-3 code when the language has no two-letter code.
func (WhatlangDetector) Detect(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrUndetected
	}
	info := whatlanggo.Detect(text)
	if info.Confidence <= 0 {
		return "", ErrUndetected
	}
	if code := info.Lang.Iso6391(); code != "" {
		return code, nil
	}
	if code := info.Lang.Iso6393(); code != "" {
		return code, nil
	}
	return "", ErrUndetected
}
