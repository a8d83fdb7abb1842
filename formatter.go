package refdex

import "strings"

// FormatContext formats retrieval results for LLM context. Each result
// becomes one document block: ancestor chunks first (outermost to
// innermost), then the retrieved chunk itself, then its source URL so the
// model can cite it. Blocks are separated by blank lines.
func FormatContext(results []RetrievedChunk) string {
	if len(results) == 0 {
		return ""
	}

	parts := make([]string, 0, len(results))
	for _, result := range results {
		var sb strings.Builder
		sb.WriteString("## Document: ")
		sb.WriteString(Breadcrumb(result))

		for i := len(result.Ancestors) - 1; i >= 0; i-- {
			sb.WriteString("\n\n")
			sb.WriteString(result.Ancestors[i].Text)
		}

		sb.WriteString("\n\n")
		sb.WriteString(result.Chunk.Text)

		if result.Chunk.SourceURL != "" {
			sb.WriteString("\nSource: ")
			sb.WriteString(result.Chunk.SourceURL)
		}

		parts = append(parts, sb.String())
	}

	return strings.Join(parts, "\n\n")
}

// Breadcrumb renders the ancestor path of a retrieved chunk, outermost
// first, ending with the chunk's own title. Falls back to the source URL
// when no titles are available.
func Breadcrumb(result RetrievedChunk) string {
	titles := make([]string, 0, len(result.Ancestors)+1)
	for i := len(result.Ancestors) - 1; i >= 0; i-- {
		if t := result.Ancestors[i].Title; t != "" && (len(titles) == 0 || titles[len(titles)-1] != t) {
			titles = append(titles, t)
		}
	}
	if t := result.Chunk.Title; t != "" && (len(titles) == 0 || titles[len(titles)-1] != t) {
		titles = append(titles, t)
	}
	if len(titles) == 0 {
		return result.Chunk.SourceURL
	}
	return strings.Join(titles, " > ")
}
