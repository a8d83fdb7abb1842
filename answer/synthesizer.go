// Package answer synthesizes grounded, cited answers from retrieved
// documentation and runs the full question answering pipeline.
package answer

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/refdex"
)

// DefaultScoreFloor is the cosine similarity below which retrieval results
// are not considered relevant documentation.
const DefaultScoreFloor = 0.25

// answerTemperature keeps generation close to the provided documentation.
const answerTemperature = 0.1

const systemPrompt = "You are a helpful assistant answering questions about software library documentation. " +
	"Answer based only on the documentation provided and include the source links relevant to your answer. " +
	"If the answer is not in the documentation, say so."

// Ensure Synthesizer implements refdex.Synthesizer at compile time.
var _ refdex.Synthesizer = (*Synthesizer)(nil)

// Synthesizer generates an answer from retrieval results.
type Synthesizer struct {
	Generator refdex.Generator

	// ScoreFloor is the minimum fused score a result must reach before
	// generation is attempted, default DefaultScoreFloor.
	ScoreFloor float32
}

// NewSynthesizer creates a Synthesizer with the default score floor.
func NewSynthesizer(generator refdex.Generator) *Synthesizer {
	return &Synthesizer{Generator: generator, ScoreFloor: DefaultScoreFloor}
}

// Synthesize builds the generation context from results in descending score
// order and generates an answer. When no result reaches the score floor the
// fixed no-answer response is returned without invoking generation; a
// generation failure after relevant documentation was found is surfaced.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, results []refdex.RetrievedChunk) (*refdex.Answer, error) {
	if strings.TrimSpace(query) == "" {
		return nil, refdex.Errorf(refdex.EINVALID, "query required")
	}

	relevant := results[:0:0]
	for _, result := range results {
		if result.Score >= s.ScoreFloor {
			relevant = append(relevant, result)
		}
	}
	if len(relevant) == 0 {
		return &refdex.Answer{Text: refdex.NoAnswerText, NoDocumentation: true}, nil
	}

	texts, err := s.Generator.Generate(ctx, refdex.GenerateRequest{
		System:      systemPrompt,
		Prompt:      BuildUserPrompt(relevant, query),
		Temperature: answerTemperature,
	})
	if err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return nil, refdex.Errorf(refdex.EINTERNAL, "generator returned no completion")
	}

	return &refdex.Answer{
		Text:      strings.TrimSpace(texts[0]),
		Citations: citations(relevant),
	}, nil
}

// BuildUserPrompt builds the user prompt containing documentation and the
// question.
func BuildUserPrompt(results []refdex.RetrievedChunk, query string) string {
	var sb strings.Builder
	sb.WriteString("<documentation>\n")
	sb.WriteString(refdex.FormatContext(results))
	sb.WriteString("\n</documentation>\n\n")
	fmt.Fprintf(&sb, "Question: %s", query)
	return sb.String()
}

// citations lists what went into the context, in context order, one entry
// per distinct source.
func citations(results []refdex.RetrievedChunk) []refdex.Citation {
	seen := make(map[string]bool, len(results))
	out := make([]refdex.Citation, 0, len(results))
	for _, result := range results {
		c := refdex.Citation{
			Title:      result.Chunk.Title,
			Breadcrumb: refdex.Breadcrumb(result),
			SourceURL:  result.Chunk.SourceURL,
		}
		key := c.SourceURL
		if key == "" {
			key = c.Breadcrumb + "\x00" + c.Title
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}
