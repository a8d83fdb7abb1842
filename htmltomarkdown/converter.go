// Package htmltomarkdown converts rich-description HTML to Markdown.
package htmltomarkdown

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/refdex"
)

// Ensure Converter implements refdex.Converter at compile time.
var _ refdex.Converter = (*Converter)(nil)

// Converter converts element description HTML to Markdown. The table
// plugin matters here: parameter and return-value documentation arrives
// as HTML tables.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a new Converter.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	return &Converter{conv: conv}
}

// Convert transforms HTML into Markdown, trimmed of surrounding
// whitespace. Empty or whitespace-only input is EINVALID.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", refdex.Errorf(refdex.EINVALID, "empty HTML input")
	}

	markdown, err := c.conv.ConvertString(html)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(markdown), nil
}
