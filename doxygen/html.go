package doxygen

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/refdex"
	"golang.org/x/net/html"
)

// loadCompoundHTML recovers a compound's records from its rendered page
// when the XML file is missing from the dump.
func (l *Loader) loadCompoundHTML(refid string, kind refdex.Kind) ([]*refdex.Record, error) {
	path := filepath.Join(l.HTMLDir, refid+".html")
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, refdex.Errorf(refdex.ENOTFOUND, "no XML or HTML for %s", refid)
		}
		return nil, err
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, refdex.Errorf(refdex.EINVALID, "%s: %v", path, err)
	}

	name := compoundTitle(doc.Find("div.header div.title").First().Text())
	if name == "" {
		return nil, refdex.Errorf(refdex.EINVALID, "%s: page without title", path)
	}

	compound := &refdex.Record{
		ID:        name,
		Kind:      kind,
		Title:     name,
		SourceURL: l.pageURL(refid),
	}
	if block := doc.Find("div.contents div.textblock").First(); block.Length() > 0 {
		compound.Text = l.convertFragment(block)
	}
	records := []*refdex.Record{compound}

	// Each documented member is a memtitle heading followed by a memitem
	// block holding the signature and the description.
	doc.Find("h2.memtitle").Each(func(_ int, heading *goquery.Selection) {
		title := memberTitle(heading.Text())
		if title == "" {
			return
		}

		item := heading.NextFiltered("div.memitem")
		signature := plainText(item.Find("td.memname").Text())

		memberKind := refdex.KindMember
		if !strings.Contains(title, "(") && !strings.Contains(signature, "(") {
			memberKind = refdex.KindAttribute
		}

		text := l.convertFragment(item.Find("div.memdoc"))
		if signature != "" {
			text += "\nCode: " + signature
		}

		records = append(records, &refdex.Record{
			ID:        name + "::" + title,
			Kind:      memberKind,
			Title:     title,
			Text:      strings.TrimSpace(text),
			ParentID:  name,
			SourceURL: compound.SourceURL,
		})
	})

	return records, nil
}

// convertFragment converts a selection's inner HTML to Markdown, falling
// back to flattened text when conversion fails.
func (l *Loader) convertFragment(sel *goquery.Selection) string {
	fragment, err := sel.Html()
	if err != nil || strings.TrimSpace(fragment) == "" {
		return ""
	}
	if l.Converter != nil {
		if md, err := l.Converter.Convert(fragment); err == nil {
			return strings.TrimSpace(md)
		}
	}
	return plainText(fragment)
}

// compoundTitle strips the page-type suffix from a Doxygen page title,
// e.g. "pcl::PointXYZ Struct Reference" → "pcl::PointXYZ".
func compoundTitle(title string) string {
	title = plainText(title)
	for _, suffix := range []string{
		" Class Template Reference",
		" Struct Template Reference",
		" Class Reference",
		" Struct Reference",
		" Union Reference",
		" Namespace Reference",
		" Module Reference",
	} {
		if strings.HasSuffix(title, suffix) {
			return strings.TrimSuffix(title, suffix)
		}
	}
	return title
}

// memberTitle strips the permalink marker Doxygen puts in member headings.
func memberTitle(title string) string {
	title = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(title), "◆"))
	return plainText(title)
}

// plainText flattens an HTML fragment to whitespace-normalized text.
func plainText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	root, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return strings.Join(strings.Fields(fragment), " ")
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return strings.Join(strings.Fields(sb.String()), " ")
}
