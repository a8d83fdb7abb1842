package expand

import (
	"context"
	"strconv"
	"strings"

	"github.com/fwojciec/refdex"
)

const questionsSystem = "You anticipate how developers phrase questions about software libraries."

// Questions generates hypothetical questions a documentation chunk answers.
// The questions are embedded alongside the chunk's content so question-kind
// probes can match them directly.
type Questions struct {
	Generator refdex.Generator

	// Temperature overrides the default when positive.
	Temperature float32
}

// NewQuestions creates a question generator over generator.
func NewQuestions(generator refdex.Generator) *Questions {
	return &Questions{Generator: generator}
}

// Questions returns up to n distinct questions the chunk's text answers.
func (q *Questions) Questions(ctx context.Context, chunk *refdex.Chunk, n int) ([]string, error) {
	if chunk == nil || strings.TrimSpace(chunk.Text) == "" {
		return nil, refdex.Errorf(refdex.EINVALID, "chunk text required")
	}
	if n <= 0 {
		n = DefaultProbes
	}

	temperature := q.Temperature
	if temperature <= 0 {
		temperature = hyqeTemperature
	}

	texts, err := q.Generator.Generate(ctx, refdex.GenerateRequest{
		System: questionsSystem,
		Prompt: "Write " + strconv.Itoa(n) + " different questions a developer would ask that the documentation below answers. " +
			"Separate the questions with semicolons and write nothing else.\n\n" + chunk.Text,
		Temperature: temperature,
		MaxTokens:   200,
	})
	if err != nil {
		return nil, err
	}

	var questions []string
	for _, text := range texts {
		questions = append(questions, splitQuestions(text)...)
	}
	return dedupe(questions, n), nil
}
