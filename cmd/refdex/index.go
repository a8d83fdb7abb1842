package main

import (
	"fmt"

	"github.com/fwojciec/refdex"
	"github.com/fwojciec/refdex/doxygen"
	"github.com/fwojciec/refdex/fs"
	"github.com/fwojciec/refdex/htmltomarkdown"
	"github.com/fwojciec/refdex/index"
)

// Run executes the index command.
func (c *IndexCmd) Run(deps *Dependencies) error {
	if (c.CSV == "") == (c.Doxygen == "") {
		fmt.Fprintf(deps.Stderr, "error: exactly one of --csv or --doxygen is required\n")
		return refdex.Errorf(refdex.EINVALID, "exactly one of --csv or --doxygen is required")
	}

	var source refdex.RecordSource
	if c.CSV != "" {
		source = fs.NewRecordSource(c.CSV)
	} else {
		source = doxygen.NewLoader(c.Doxygen, htmltomarkdown.NewConverter())
	}

	records, err := source.Load(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", refdex.ErrorMessage(err))
		return err
	}

	// Reuse the corpus row on refresh so its vector collection name and
	// embedding bookkeeping survive.
	corpora, err := deps.Corpora.FindCorpora(deps.Ctx, refdex.CorpusFilter{Name: &c.Name})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", refdex.ErrorMessage(err))
		return err
	}

	var corpus *refdex.Corpus
	if len(corpora) > 0 {
		corpus = corpora[0]
		if c.SourceURL != "" && c.SourceURL != corpus.SourceURL {
			corpus, err = deps.Corpora.UpdateCorpus(deps.Ctx, corpus.ID, refdex.CorpusUpdate{SourceURL: &c.SourceURL})
			if err != nil {
				fmt.Fprintf(deps.Stderr, "error: %s\n", refdex.ErrorMessage(err))
				return err
			}
		}
	} else {
		corpus = &refdex.Corpus{
			Name:      c.Name,
			SourceURL: c.SourceURL,
			Model:     deps.Indexer.Embedder.Model(),
		}
		if err := deps.Corpora.CreateCorpus(deps.Ctx, corpus); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", refdex.ErrorMessage(err))
			return err
		}
	}

	// Apply user-specified concurrency
	if c.Concurrency > 0 {
		deps.Indexer.Concurrency = c.Concurrency
	}

	fmt.Fprintf(deps.Stdout, "Indexing corpus %q (%s)\n", corpus.Name, corpus.ID)

	progress := func(event index.ProgressEvent) {
		switch event.Type {
		case index.ProgressStarted:
			fmt.Fprintf(deps.Stdout, "  Found %d root elements\n", event.Total)
		case index.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "  skip %s: %v\n", event.RootID, event.Error)
		case index.ProgressFinished:
			// Summary printed after indexing completes
		}
	}

	stats, err := deps.Indexer.IndexCorpus(deps.Ctx, corpus, records, progress)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", refdex.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "  Indexed %d elements into %d chunks (%d embedded, %d reused, %s)\n",
		stats.Elements, stats.Chunks, stats.Embedded, stats.Reused, index.FormatTokens(stats.Tokens))
	if stats.Questions > 0 {
		fmt.Fprintf(deps.Stdout, "  Indexed %d questions\n", stats.Questions)
	}
	if stats.Skipped > 0 || stats.Failed > 0 {
		fmt.Fprintf(deps.Stderr, "  %d records skipped, %d elements failed\n", stats.Skipped, stats.Failed)
	}

	return nil
}
