package refdex

import "context"

// NoAnswerText is the fixed response returned when retrieval finds nothing
// above the score floor. It is produced without invoking generation.
const NoAnswerText = "No relevant documentation found."

// RefusalText is the fixed response for queries outside the configured
// answer languages.
const RefusalText = "Sorry, I can only answer questions in English."

// Citation points an answer back at the documentation it was grounded on.
type Citation struct {
	// Title of the cited chunk's element.
	Title string `json:"title"`

	// Breadcrumb is the ancestor path, root first, e.g.
	// "PointCloud > PointXYZ > getVector()".
	Breadcrumb string `json:"breadcrumb,omitempty"`

	SourceURL string `json:"sourceUrl,omitempty"`
}

// Answer is a generated response with the citations that were actually
// included in the generation context, in context order.
type Answer struct {
	Text      string     `json:"text"`
	Citations []Citation `json:"citations,omitempty"`

	// NoDocumentation is true when Text is the fixed no-answer response
	// and generation was never invoked.
	NoDocumentation bool `json:"noDocumentation,omitempty"`
}

// Synthesizer turns retrieved chunks into a grounded, cited answer.
type Synthesizer interface {
	// Synthesize builds the generation context from results in descending
	// score order and invokes generation. Returns the fixed no-answer
	// response without generating when no result reaches the score floor.
	// Generation failures are surfaced, not degraded.
	Synthesize(ctx context.Context, query string, results []RetrievedChunk) (*Answer, error)
}

// Asker provides natural language question answering over a corpus.
// Implementations run the full pipeline: language routing, query
// expansion, retrieval, and synthesis.
type Asker interface {
	// Ask answers a natural language question about a corpus.
	// Returns EUNAVAILABLE if the vector store cannot be reached.
	Ask(ctx context.Context, corpus *Corpus, question string) (*Answer, error)
}
