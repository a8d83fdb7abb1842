package main

import (
	"fmt"

	"github.com/fwojciec/refdex"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	corpora, err := deps.Corpora.FindCorpora(deps.Ctx, refdex.CorpusFilter{})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", refdex.ErrorMessage(err))
		return err
	}

	if len(corpora) == 0 {
		fmt.Fprintln(deps.Stdout, "No corpora found. Use 'refdex index' to create one.")
		return nil
	}

	for _, corpus := range corpora {
		elements, err := deps.Elements.FindElements(deps.Ctx, refdex.ElementFilter{CorpusID: &corpus.ID})
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", refdex.ErrorMessage(err))
			return err
		}
		chunks, err := deps.Chunks.FindChunks(deps.Ctx, refdex.ChunkFilter{CorpusID: &corpus.ID})
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", refdex.ErrorMessage(err))
			return err
		}
		fmt.Fprintf(deps.Stdout, "%s  %s  %d elements  %d chunks  %s\n",
			corpus.ID, corpus.Name, len(elements), len(chunks), corpus.SourceURL)
	}

	return nil
}
