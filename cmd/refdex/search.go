package main

import (
	"fmt"

	"github.com/fwojciec/refdex"
)

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	corpora, err := deps.Corpora.FindCorpora(deps.Ctx, refdex.CorpusFilter{Name: &c.Name})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", refdex.ErrorMessage(err))
		return err
	}

	if len(corpora) == 0 {
		fmt.Fprintf(deps.Stderr, "error: corpus %q not found. Use 'refdex list' to see available corpora.\n", c.Name)
		return refdex.Errorf(refdex.ENOTFOUND, "corpus %q not found", c.Name)
	}

	corpus := corpora[0]

	results, err := deps.Retriever.Retrieve(deps.Ctx, corpus, c.Query)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", refdex.ErrorMessage(err))
		return err
	}

	if len(results) == 0 {
		fmt.Fprintln(deps.Stdout, "No results.")
		return nil
	}

	for i, result := range results {
		fmt.Fprintf(deps.Stdout, "%2d. %.2f  %s\n", i+1, result.Score, refdex.Breadcrumb(result))
		if result.Chunk.SourceURL != "" {
			fmt.Fprintf(deps.Stdout, "          %s\n", result.Chunk.SourceURL)
		}
	}

	return nil
}
