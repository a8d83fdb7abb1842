// Package whatlang detects the natural language of text using trigram
// profiles.
package whatlang

import (
	"strings"

	"github.com/RadhiFadlillah/whatlanggo"
	"github.com/fwojciec/refdex"
)

// Ensure Detector implements refdex.LanguageDetector at compile time.
var _ refdex.LanguageDetector = (*Detector)(nil)

// Detector detects languages with whatlanggo. The zero value is ready to
// use; detection is stateless and safe for concurrent use.
type Detector struct{}

// NewDetector creates a new Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect returns the ISO 639-1 tag of the dominant language and the
// detection confidence. Empty or undecidable text returns an empty tag.
func (d *Detector) Detect(text string) (string, float64) {
	if strings.TrimSpace(text) == "" {
		return "", 0
	}

	info := whatlanggo.Detect(text)
	tag := info.Lang.Iso6391()
	if tag == "" {
		return "", 0
	}
	return tag, info.Confidence
}
