package main

import (
	"fmt"

	"github.com/fwojciec/refdex"
)

// Run executes the ask command.
func (c *AskCmd) Run(deps *Dependencies) error {
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

	answer, err := deps.Asker.Ask(deps.Ctx, corpus, c.Question)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", refdex.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, answer.Text)

	if len(answer.Citations) > 0 {
		fmt.Fprintln(deps.Stdout, "\nSources:")
		for i, citation := range answer.Citations {
			label := citation.Breadcrumb
			if label == "" {
				label = citation.Title
			}
			fmt.Fprintf(deps.Stdout, "  %d. %s\n", i+1, label)
			if citation.SourceURL != "" {
				fmt.Fprintf(deps.Stdout, "     %s\n", citation.SourceURL)
			}
		}
	}

	return nil
}
