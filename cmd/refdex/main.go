package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/refdex"
	"github.com/fwojciec/refdex/answer"
	"github.com/fwojciec/refdex/bloom"
	"github.com/fwojciec/refdex/expand"
	"github.com/fwojciec/refdex/gemini"
	"github.com/fwojciec/refdex/index"
	"github.com/fwojciec/refdex/ollama"
	"github.com/fwojciec/refdex/qdrant"
	"github.com/fwojciec/refdex/retrieve"
	refslog "github.com/fwojciec/refdex/slog"
	"github.com/fwojciec/refdex/sqlite"
	"github.com/fwojciec/refdex/whatlang"
	"github.com/joho/godotenv"
	"google.golang.org/genai"
)

func main() {
	// Load .env if present; environment variables take precedence.
	_ = godotenv.Load()

	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing.
	CorpusService  refdex.CorpusService
	ElementService refdex.ElementService
	ChunkService   refdex.ChunkService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Initialize dependencies struct for Kong binding
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	// Create Kong parser with dependency binding
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("refdex"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle help flags using Kong
	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'refdex --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	// Parse arguments first to know which command and its flags
	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// The leading token may be a global flag; Kong knows the command.
	cmd = strings.Fields(kongCtx.Command())[0]

	// Open database
	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set REFDEX_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	// Wire core services into dependencies
	m.CorpusService = sqlite.NewCorpusService(m.DB)
	m.ElementService = sqlite.NewElementService(m.DB)
	m.ChunkService = sqlite.NewChunkService(m.DB)
	deps.DB = m.DB
	deps.Corpora = m.CorpusService
	deps.Elements = m.ElementService
	deps.Chunks = m.ChunkService

	logger := debugLogger(stderr, cli.Debug)

	// The vector store backs every command except list
	if cmd == "index" || cmd == "ask" || cmd == "search" || cmd == "remove" {
		host, port, err := qdrantTarget()
		if err != nil {
			return err
		}
		vectorIndex, err := qdrant.NewIndex(host, port, os.Getenv("QDRANT_API_KEY"))
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Set QDRANT_ADDR if Qdrant is not on localhost:6334")
			return fmt.Errorf("failed to connect to Qdrant at %s:%d: %w", host, port, err)
		}
		defer vectorIndex.Close()
		deps.Index = refslog.NewLoggingVectorIndex(vectorIndex, logger)
	}

	// Wire command-specific dependencies based on command
	if cmd == "index" {
		embedder, generator, err := newProvider(ctx, cli.Index.Provider, stderr)
		if err != nil {
			return err
		}
		embedder = refslog.NewLoggingEmbedder(embedder, logger)

		tokenCounter, err := gemini.NewTokenCounter(gemini.DefaultModel)
		if err != nil {
			return fmt.Errorf("failed to create token counter: %w", err)
		}

		deps.Indexer = &index.Indexer{
			Corpora:  m.CorpusService,
			Elements: m.ElementService,
			Chunks:   m.ChunkService,
			Embedder: embedder,
			Index:    deps.Index,
			Chunker:  &refdex.Chunker{Tokens: tokenCounter, Budget: cli.Index.Budget},
			Detector: whatlang.NewDetector(),
			Logger:   logger,
		}
		if cli.Index.Questions {
			deps.Indexer.Questions = expand.NewQuestions(refslog.NewLoggingGenerator(generator, logger))
			deps.Indexer.Deduper = bloom.NewFilter(100000, 0.01)
		}
	}

	if cmd == "ask" || cmd == "search" {
		var provider, strategy string
		var topK, probes int
		if cmd == "ask" {
			provider, strategy = cli.Ask.Provider, cli.Ask.Strategy
			topK, probes = cli.Ask.TopK, cli.Ask.Probes
		} else {
			provider, strategy = cli.Search.Provider, cli.Search.Strategy
			topK, probes = cli.Search.TopK, 0
		}

		embedder, generator, err := newProvider(ctx, provider, stderr)
		if err != nil {
			return err
		}
		embedder = refslog.NewLoggingEmbedder(embedder, logger)
		generator = refslog.NewLoggingGenerator(generator, logger)

		expander := expand.NewExpander(generator, refdex.Strategy(strategy))
		expander.Logger = logger
		if probes > 0 {
			expander.N = probes
		}

		retriever := retrieve.NewRetriever(embedder, deps.Index, deps.Chunks,
			refslog.NewLoggingExpander(expander, logger))
		if topK > 0 {
			retriever.TopK = topK
		}
		retriever.Logger = logger
		deps.Retriever = retriever

		if cmd == "ask" {
			asker := answer.NewAsker(retriever, answer.NewSynthesizer(generator), whatlang.NewDetector())
			// An explicit empty --lang disables language routing.
			asker.Languages = nil
			for _, lang := range cli.Ask.Lang {
				if lang != "" {
					asker.Languages = append(asker.Languages, lang)
				}
			}
			deps.Asker = refslog.NewLoggingAsker(asker, logger)
		}
	}

	return kongCtx.Run(deps)
}

// debugLogger returns the logger behind the --debug flag. Without the flag
// log output is discarded so command output stays clean.
func debugLogger(stderr io.Writer, debug bool) *slog.Logger {
	if debug {
		return slog.New(slog.NewTextHandler(stderr, nil))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newProvider wires the embedding and generation services for the chosen
// provider.
func newProvider(ctx context.Context, provider string, stderr io.Writer) (refdex.Embedder, refdex.Generator, error) {
	switch provider {
	case "ollama":
		host := os.Getenv("OLLAMA_HOST")
		if host == "" {
			host = ollama.DefaultHost
		}
		embedder := ollama.NewEmbedder(host, ollama.DefaultEmbeddingModel, ollama.DefaultEmbeddingDimensions)
		generator := ollama.NewGenerator(host, ollama.DefaultModel)
		return embedder, generator, nil

	default:
		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			fmt.Fprintln(stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
			return nil, nil, fmt.Errorf("GEMINI_API_KEY not set. Get a key at https://aistudio.google.com/apikey")
		}

		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
			return nil, nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
		}

		embedder := gemini.NewEmbedder(client, gemini.DefaultEmbeddingModel, gemini.DefaultEmbeddingDimensions)
		generator := gemini.NewGenerator(client, gemini.DefaultModel)
		return embedder, generator, nil
	}
}

// qdrantTarget resolves the Qdrant host and gRPC port from QDRANT_ADDR.
func qdrantTarget() (string, int, error) {
	addr := os.Getenv("QDRANT_ADDR")
	if addr == "" {
		addr = qdrant.DefaultAddr
	}
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid QDRANT_ADDR %q: expected host:port", addr)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid QDRANT_ADDR %q: port must be a number", addr)
	}
	return host, port, nil
}

func defaultDBPath() string {
	if path := os.Getenv("REFDEX_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "refdex.db"
	}
	dir := filepath.Join(home, ".refdex")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "refdex.db")
}
