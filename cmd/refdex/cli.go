package main

import (
	"context"
	"io"

	"github.com/fwojciec/refdex"
	"github.com/fwojciec/refdex/index"
	"github.com/fwojciec/refdex/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdout    io.Writer
	Stderr    io.Writer
	DB        *sqlite.DB
	Corpora   refdex.CorpusService
	Elements  refdex.ElementService
	Chunks    refdex.ChunkService
	Index     refdex.VectorIndex
	Indexer   *index.Indexer
	Retriever refdex.Retriever
	Asker     refdex.Asker
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Debug bool `env:"REFDEX_DEBUG" help:"Log embedding, generation, and vector store calls"`

	Index  IndexCmd  `cmd:"" help:"Index API reference documentation into a corpus"`
	Ask    AskCmd    `cmd:"" help:"Ask a question about a corpus"`
	Search SearchCmd `cmd:"" help:"Search a corpus without generating an answer"`
	List   ListCmd   `cmd:"" help:"List all corpora"`
	Remove RemoveCmd `cmd:"" help:"Remove a corpus and its vectors"`
}

// IndexCmd is the "index" subcommand.
type IndexCmd struct {
	Name        string `arg:"" help:"Corpus name"`
	CSV         string `name:"csv" help:"Load records from a CSV file"`
	Doxygen     string `name:"doxygen" help:"Load records from a Doxygen HTML directory"`
	SourceURL   string `name:"source-url" help:"Base documentation URL"`
	Provider    string `default:"gemini" enum:"gemini,ollama" help:"Embedding and generation provider"`
	Questions   bool   `short:"q" help:"Also index generated questions per chunk"`
	Concurrency int    `short:"c" default:"10" help:"Concurrent chunking limit"`
	Budget      int    `default:"512" help:"Token budget per chunk"`
}

// AskCmd is the "ask" subcommand.
type AskCmd struct {
	Name     string `arg:"" help:"Corpus name"`
	Question string `arg:"" help:"Question to ask about the documentation"`
	Strategy string   `default:"hyde" enum:"none,hyde,hyqe" help:"Query expansion strategy"`
	Probes   int      `default:"3" help:"Generated probes per strategy"`
	TopK     int      `name:"top-k" default:"5" help:"Maximum results to retrieve"`
	Provider string   `default:"gemini" enum:"gemini,ollama" help:"Embedding and generation provider"`
	Lang     []string `default:"en" help:"Accepted question languages (--lang='' disables routing)"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Name     string `arg:"" help:"Corpus name"`
	Query    string `arg:"" help:"Search query"`
	TopK     int    `name:"top-k" default:"5" help:"Maximum results"`
	Strategy string `default:"none" enum:"none,hyde,hyqe" help:"Query expansion strategy"`
	Provider string `default:"gemini" enum:"gemini,ollama" help:"Embedding and generation provider"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct{}

// RemoveCmd is the "remove" subcommand.
type RemoveCmd struct {
	Name  string `arg:"" help:"Corpus name"`
	Force bool   `help:"Confirm removal"`
}
