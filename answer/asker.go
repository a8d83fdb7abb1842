package answer

import (
	"context"
	"slices"
	"strings"

	"github.com/fwojciec/refdex"
)

// routingConfidence is the minimum detection confidence before a query is
// refused for being in an unsupported language. Short queries detect
// unreliably; below this the query goes through.
const routingConfidence = 0.5

// Ensure Asker implements refdex.Asker at compile time.
var _ refdex.Asker = (*Asker)(nil)

// Asker answers questions over a corpus: language routing, retrieval, then
// synthesis.
type Asker struct {
	Retriever   refdex.Retriever
	Synthesizer refdex.Synthesizer

	// Detector and Languages configure language routing. Routing is active
	// when both are set; an empty Languages slice disables it.
	Detector  refdex.LanguageDetector
	Languages []string
}

// NewAsker creates an Asker that accepts English questions.
func NewAsker(retriever refdex.Retriever, synthesizer refdex.Synthesizer, detector refdex.LanguageDetector) *Asker {
	return &Asker{
		Retriever:   retriever,
		Synthesizer: synthesizer,
		Detector:    detector,
		Languages:   []string{"en"},
	}
}

// Ask answers a natural language question about the corpus.
func (a *Asker) Ask(ctx context.Context, corpus *refdex.Corpus, question string) (*refdex.Answer, error) {
	if corpus == nil {
		return nil, refdex.Errorf(refdex.EINVALID, "corpus required")
	}
	if strings.TrimSpace(question) == "" {
		return nil, refdex.Errorf(refdex.EINVALID, "question required")
	}

	if len(a.Languages) > 0 && a.Detector != nil {
		tag, confidence := a.Detector.Detect(question)
		if tag != "" && confidence >= routingConfidence && !slices.Contains(a.Languages, tag) {
			return &refdex.Answer{Text: refdex.RefusalText}, nil
		}
	}

	results, err := a.Retriever.Retrieve(ctx, corpus, question)
	if err != nil {
		return nil, err
	}

	return a.Synthesizer.Synthesize(ctx, question, results)
}
