package refdex

// LanguageDetector detects the natural language of a piece of text.
type LanguageDetector interface {
	// Detect returns an ISO 639-1 language tag (e.g. "en") and a confidence
	// in [0, 1]. Empty or undecidable text returns an empty tag.
	Detect(text string) (tag string, confidence float64)
}
