// Package expand turns user queries into retrieval probes.
//
// The raw query is always probed. On top of it, HyDE generates hypothetical
// documentation passages that tend to land near real documentation in
// embedding space, and HyQE generates paraphrased questions that are searched
// against the question-vector side of the index.
package expand

import (
	"context"
	"log/slog"
	"strings"

	"github.com/fwojciec/refdex"
	"github.com/google/uuid"
)

// DefaultProbes is the number of generated probes per strategy.
const DefaultProbes = 3

// Strategy default temperatures. HyQE runs hotter so paraphrases spread out.
const (
	hydeTemperature float32 = 0.5
	hyqeTemperature float32 = 0.75
)

const hydeSystem = "You write technical reference documentation for software libraries."

const hyqeSystem = "You anticipate how developers phrase questions about software libraries."

// Ensure Expander implements refdex.Expander at compile time.
var _ refdex.Expander = (*Expander)(nil)

// Expander generates retrieval probes for a query using a text generator.
type Expander struct {
	Generator refdex.Generator
	Strategy  refdex.Strategy

	// N is the number of generated probes, default DefaultProbes.
	N int

	// Temperature overrides the strategy default when positive.
	Temperature float32

	Logger *slog.Logger
}

// NewExpander creates an Expander with default fan-out and temperatures.
func NewExpander(generator refdex.Generator, strategy refdex.Strategy) *Expander {
	return &Expander{
		Generator: generator,
		Strategy:  strategy,
		Logger:    slog.Default(),
	}
}

// Expand returns the probes for query, the raw query always first. When
// generation fails the raw probe alone is returned; expansion is an
// optimization, never a gate.
func (e *Expander) Expand(ctx context.Context, query string) ([]refdex.Probe, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, refdex.Errorf(refdex.EINVALID, "query required")
	}

	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}

	probes := []refdex.Probe{{
		ID:   uuid.New().String(),
		Type: refdex.ProbeRaw,
		Text: query,
	}}

	var (
		texts     []string
		probeType refdex.ProbeType
		err       error
	)
	switch e.Strategy {
	case refdex.StrategyHyDE:
		probeType = refdex.ProbeHyDE
		texts, err = e.hypotheticalAnswers(ctx, query)
	case refdex.StrategyHyQE:
		probeType = refdex.ProbeHyQE
		texts, err = e.hypotheticalQuestions(ctx, query)
	default:
		return probes, nil
	}
	if err != nil {
		logger.Warn("query expansion failed, using raw query only",
			"strategy", string(e.Strategy), "err", err)
		return probes, nil
	}

	for _, text := range texts {
		probes = append(probes, refdex.Probe{
			ID:   uuid.New().String(),
			Type: probeType,
			Text: text,
		})
	}

	return probes, nil
}

func (e *Expander) probes() int {
	if e.N > 0 {
		return e.N
	}
	return DefaultProbes
}

func (e *Expander) temperature(fallback float32) float32 {
	if e.Temperature > 0 {
		return e.Temperature
	}
	return fallback
}

// hypotheticalAnswers generates short documentation passages that would
// answer the query. Each generation candidate becomes one probe.
func (e *Expander) hypotheticalAnswers(ctx context.Context, query string) ([]string, error) {
	texts, err := e.Generator.Generate(ctx, refdex.GenerateRequest{
		System: hydeSystem,
		Prompt: "Write a short passage of API reference documentation that would answer the question below. " +
			"Invent plausible type and function names if needed; write as if the documentation already exists. " +
			"Do not address the reader and do not mention the question.\n\nQuestion: " + query,
		Temperature: e.temperature(hydeTemperature),
		MaxTokens:   200,
		N:           e.probes(),
	})
	if err != nil {
		return nil, err
	}
	return dedupe(texts, e.probes()), nil
}

// hypotheticalQuestions generates paraphrases of the query in a single
// completion and splits them apart.
func (e *Expander) hypotheticalQuestions(ctx context.Context, query string) ([]string, error) {
	texts, err := e.Generator.Generate(ctx, refdex.GenerateRequest{
		System: hyqeSystem,
		Prompt: "Rephrase the question below as different questions a developer might ask when looking for the same documentation. " +
			"Separate the questions with semicolons and write nothing else.\n\nQuestion: " + query,
		Temperature: e.temperature(hyqeTemperature),
		MaxTokens:   200,
	})
	if err != nil {
		return nil, err
	}

	var questions []string
	for _, text := range texts {
		questions = append(questions, splitQuestions(text)...)
	}
	return dedupe(questions, e.probes()), nil
}

// splitQuestions breaks a completion into individual questions at semicolons
// and newlines, stripping list markers the model may have added.
func splitQuestions(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == ';' || r == '\n'
	})

	questions := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		part = strings.TrimLeft(part, "-*0123456789.) ")
		if part != "" {
			questions = append(questions, part)
		}
	}
	return questions
}

// dedupe drops repeated texts case-insensitively and caps the result at n.
func dedupe(texts []string, n int) []string {
	seen := make(map[string]bool, len(texts))
	out := make([]string, 0, len(texts))
	for _, text := range texts {
		key := strings.ToLower(strings.TrimSpace(text))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, text)
		if len(out) == n {
			break
		}
	}
	return out
}
