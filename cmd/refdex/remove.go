package main

import (
	"fmt"

	"github.com/fwojciec/refdex"
)

// Run executes the remove command.
func (c *RemoveCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm removal\n")
		return refdex.Errorf(refdex.EINVALID, "use --force to confirm removal")
	}

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

	// Drop vectors before rows; the collection name derives from the
	// corpus ID, which is unrecoverable once the row is gone.
	if err := deps.Index.DropCollection(deps.Ctx, refdex.CollectionName(corpus.ID)); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", refdex.ErrorMessage(err))
		return err
	}

	if err := deps.Corpora.DeleteCorpus(deps.Ctx, corpus.ID); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", refdex.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Removed corpus %q\n", corpus.Name)
	return nil
}
