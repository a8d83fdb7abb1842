package main_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	main "github.com/fwojciec/refdex/cmd/refdex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLI_HelpShowsAllCommands(t *testing.T) {
	t.Parallel()

	cli := &main.CLI{}
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	// Use kong.Exit to prevent os.Exit from being called during tests
	parser, err := kong.New(cli,
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	require.NoError(t, err)

	// Parse --help (Kong writes help to stdout)
	_, _ = parser.Parse([]string{"--help"})

	// Kong prints help even if Parse returns an error
	// The help text should mention all commands
	helpOutput := stdout.String()

	expectedCommands := []string{"index", "ask", "search", "list", "remove"}
	for _, cmd := range expectedCommands {
		assert.Contains(t, helpOutput, cmd, "Help should mention %s command", cmd)
	}
}

func TestCLI_ParsesAskFlags(t *testing.T) {
	t.Parallel()

	newParser := func(t *testing.T, cli *main.CLI) *kong.Kong {
		t.Helper()
		parser, err := kong.New(cli,
			kong.Writers(&bytes.Buffer{}, &bytes.Buffer{}),
			kong.Exit(func(int) {}),
		)
		require.NoError(t, err)
		return parser
	}

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		cli := &main.CLI{}
		_, err := newParser(t, cli).Parse([]string{"ask", "pcl", "how do I make a point cloud?"})
		require.NoError(t, err)
		assert.Equal(t, "hyde", cli.Ask.Strategy)
		assert.Equal(t, 3, cli.Ask.Probes)
		assert.Equal(t, 5, cli.Ask.TopK)
		assert.Equal(t, []string{"en"}, cli.Ask.Lang)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Parallel()

		cli := &main.CLI{}
		_, err := newParser(t, cli).Parse([]string{
			"ask", "pcl", "how do I make a point cloud?",
			"--strategy", "hyqe", "--probes", "5", "--lang", "en", "--lang", "fr",
		})
		require.NoError(t, err)
		assert.Equal(t, "hyqe", cli.Ask.Strategy)
		assert.Equal(t, 5, cli.Ask.Probes)
		assert.Equal(t, []string{"en", "fr"}, cli.Ask.Lang)
	})
}

func TestMain_Run_HelpShowsKongOutput(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	m.DBPath = filepath.Join(t.TempDir(), "test.db")

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	// --help should return nil (success) and show commands
	err := m.Run(context.Background(), []string{"--help"}, stdout, stderr)
	require.NoError(t, err)

	// Kong should have written help to stdout with all commands
	helpOutput := stdout.String()
	expectedCommands := []string{"index", "ask", "search", "list", "remove"}
	for _, cmd := range expectedCommands {
		assert.Contains(t, helpOutput, cmd, "Help should mention %s command", cmd)
	}

	// Verify Kong-style formatting (Kong has "Usage:" prefix and "Flags:" section)
	assert.Contains(t, helpOutput, "Usage:", "Help should have Kong-style Usage prefix")
	assert.Contains(t, helpOutput, "Flags:", "Help should have Kong-style Flags section")
}

func TestMain_Run_NoArgsReturnsError(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	m.DBPath = filepath.Join(t.TempDir(), "test.db")

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := m.Run(context.Background(), nil, stdout, stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no command specified")
	assert.Contains(t, stdout.String(), "Usage:")
}
