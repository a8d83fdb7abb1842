package mock

import (
	"github.com/fwojciec/refdex"
)

var _ refdex.LanguageDetector = (*LanguageDetector)(nil)

// LanguageDetector is a mock implementation of refdex.LanguageDetector.
type LanguageDetector struct {
	DetectFn func(text string) (string, float64)
}

func (d *LanguageDetector) Detect(text string) (string, float64) {
	return d.DetectFn(text)
}
