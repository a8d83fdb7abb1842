package refdex

// Converter converts rich-description HTML to Markdown. Element and chunk
// text is stored as Markdown; record loaders convert at ingestion time.
type Converter interface {
	Convert(html string) (string, error)
}
