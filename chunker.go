package refdex

import (
	"context"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// DefaultChunkBudget is the default per-chunk token budget.
const DefaultChunkBudget = 512

// summaryLimit caps the one-line child summaries inside coarse chunks.
const summaryLimit = 160

// Chunker produces chunks for a subtree at decreasing granularity
// ("big-to-small"): coarse chunks summarize an element and its children,
// fine chunks carry one leaf element verbatim. Fine chunks link back to
// the coarse chunk covering their element so retrieval can expand context
// with a single lookup.
type Chunker struct {
	Tokens TokenCounter
	Budget int
}

// Chunk builds all chunks for the subtree rooted at rootID.
//
// Coarse chunks partition the subtree: every element appears in exactly one
// coarse chunk's SourceElementIDs. An element whose own text exceeds the
// token budget is reported as ETOOLARGE and skipped; the remaining elements
// still chunk (one oversized element never blocks its siblings). No chunk
// text is ever truncated.
func (c *Chunker) Chunk(ctx context.Context, tree *Tree, rootID string) ([]*Chunk, []error) {
	budget := c.Budget
	if budget <= 0 {
		budget = DefaultChunkBudget
	}

	subtree, err := tree.Subtree(rootID)
	if err != nil {
		return nil, []error{err}
	}

	var chunks []*Chunk
	var errs []error
	coarseOf := make(map[string]string) // element ID → covering coarse chunk ID

	// emitsCoarse decides whether an element anchors its own coarse chunk.
	// Non-leaf kinds always do; leaf kinds do when they have children
	// (e.g. a function with attached definitions). The subtree root always
	// does so every element has a covering chunk.
	emitsCoarse := func(el *Element) bool {
		if el.ID == rootID {
			return true
		}
		return !el.Kind.Leaf() || len(tree.Children(el.ID)) > 0
	}

	count := func(text string) (int, bool) {
		n, err := c.Tokens.CountTokens(ctx, text)
		if err != nil {
			errs = append(errs, err)
			return 0, false
		}
		return n, true
	}

	for _, el := range subtree {
		if !emitsCoarse(el) {
			continue
		}

		base := elementText(el)
		n, ok := count(base)
		if !ok {
			return nil, errs
		}
		if n > budget {
			errs = append(errs, Errorf(ETOOLARGE,
				"element %q text is %d tokens, exceeds budget %d", el.ID, n, budget))
			continue
		}

		// Children covered by this element's coarse chunks are the ones
		// that do not anchor their own.
		children := tree.Children(el.ID)

		cur := &Chunk{
			CorpusID:         el.CorpusID,
			ElementID:        el.ID,
			Granularity:      GranularityCoarse,
			Title:            el.Title,
			Text:             base,
			TokenCount:       n,
			SourceElementIDs: []string{el.ID},
			SourceURL:        el.SourceURL,
			Language:         el.Language,
		}
		seq := 0
		flush := func() {
			cur.ID = chunkID(el.ID, GranularityCoarse, seq)
			cur.ContentHash = hashText(cur.Text)
			for _, id := range cur.SourceElementIDs {
				coarseOf[id] = cur.ID
			}
			chunks = append(chunks, cur)
			seq++
		}

		wroteHeader := false
		for _, child := range children {
			line := "- " + child.Title
			if s := summarize(child.Text); s != "" {
				line += ": " + s
			}

			candidate := cur.Text
			if !wroteHeader {
				candidate += "\n\nContains:"
			}
			candidate += "\n" + line

			n, ok := count(candidate)
			if !ok {
				return nil, errs
			}
			if n <= budget {
				cur.Text = candidate
				cur.TokenCount = n
				wroteHeader = true
				if !emitsCoarse(child) {
					cur.SourceElementIDs = append(cur.SourceElementIDs, child.ID)
				}
				continue
			}

			// Split at the child boundary: close the current chunk and
			// start a continuation repeating the element heading.
			flush()
			continuation := elementHeading(el) + "\n\nContains:\n" + line
			n, ok = count(continuation)
			if !ok {
				return nil, errs
			}
			if n > budget {
				errs = append(errs, Errorf(ETOOLARGE,
					"element %q summary line is %d tokens, exceeds budget %d", child.ID, n, budget))
				// Re-open a bare continuation so later children still land.
				cur = &Chunk{
					CorpusID:         el.CorpusID,
					ElementID:        el.ID,
					Granularity:      GranularityCoarse,
					Title:            el.Title,
					Text:             elementHeading(el),
					SourceElementIDs: nil,
					SourceURL:        el.SourceURL,
					Language:         el.Language,
				}
				if cur.TokenCount, ok = count(cur.Text); !ok {
					return nil, errs
				}
				wroteHeader = false
				continue
			}
			cur = &Chunk{
				CorpusID:         el.CorpusID,
				ElementID:        el.ID,
				Granularity:      GranularityCoarse,
				Title:            el.Title,
				Text:             continuation,
				TokenCount:       n,
				SourceElementIDs: nil,
				SourceURL:        el.SourceURL,
				Language:         el.Language,
			}
			wroteHeader = true
			if !emitsCoarse(child) {
				cur.SourceElementIDs = append(cur.SourceElementIDs, child.ID)
			}
		}

		if len(cur.SourceElementIDs) > 0 || seq == 0 {
			flush()
		}
	}

	// Fine chunks: one per leaf-kind element, verbatim.
	for _, el := range subtree {
		if !el.Kind.Leaf() {
			continue
		}

		text := elementText(el)
		n, ok := count(text)
		if !ok {
			return nil, errs
		}
		if n > budget {
			errs = append(errs, Errorf(ETOOLARGE,
				"element %q text is %d tokens, exceeds budget %d", el.ID, n, budget))
			continue
		}

		chunks = append(chunks, &Chunk{
			ID:               chunkID(el.ID, GranularityFine, 0),
			CorpusID:         el.CorpusID,
			ElementID:        el.ID,
			ParentChunkID:    coarseOf[el.ID],
			Granularity:      GranularityFine,
			Title:            el.Title,
			Text:             text,
			TokenCount:       n,
			SourceElementIDs: []string{el.ID},
			SourceURL:        el.SourceURL,
			Language:         el.Language,
			ContentHash:      hashText(text),
		})
	}

	for i, chunk := range chunks {
		chunk.Position = i
	}

	return chunks, errs
}

// chunkID builds the stable, path-derived chunk identifier.
func chunkID(elementID string, g Granularity, seq int) string {
	return fmt.Sprintf("%s#%s.%d", elementID, g, seq)
}

// elementText renders an element for embedding, matching the record format
// the corpus was scraped into.
func elementText(el *Element) string {
	var sb strings.Builder
	sb.WriteString("Name: ")
	sb.WriteString(el.Title)
	sb.WriteString("\nType: ")
	sb.WriteString(string(el.Kind))
	if el.Text != "" {
		sb.WriteString("\nDescription: ")
		sb.WriteString(el.Text)
	}
	return sb.String()
}

// elementHeading is the short form repeated on coarse continuation chunks.
func elementHeading(el *Element) string {
	return "Name: " + el.Title + "\nType: " + string(el.Kind)
}

// summarize returns the first non-empty line of text, capped for use as a
// child summary inside a coarse chunk.
func summarize(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		runes := []rune(line)
		if len(runes) > summaryLimit {
			return string(runes[:summaryLimit]) + "..."
		}
		return line
	}
	return ""
}

// hashText computes a hex xxhash of chunk text for staleness detection.
func hashText(text string) string {
	return fmt.Sprintf("%x", xxhash.Sum64String(text))
}
