// Package doxygen loads documentation records from Doxygen output.
//
// The primary input is the XML dump (index.xml plus one file per
// compound); when a compound's XML file is missing the loader falls back
// to parsing the rendered HTML page. Rich descriptions are converted to
// Markdown through the refdex.Converter interface.
package doxygen

import (
	"context"
	"html"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/refdex"
)

// Ensure Loader implements refdex.RecordSource at compile time.
var _ refdex.RecordSource = (*Loader)(nil)

// Loader reads a Doxygen XML dump directory into records.
type Loader struct {
	// Dir is the XML output directory (contains index.xml).
	Dir string

	// HTMLDir optionally points at the rendered HTML pages used as a
	// per-compound fallback when the XML file is missing.
	HTMLDir string

	// BaseURL, when set, is used to derive per-compound source URLs
	// (BaseURL/<refid>.html).
	BaseURL string

	Converter refdex.Converter
	Logger    *slog.Logger
}

// NewLoader creates a Loader for the given XML dump directory.
func NewLoader(dir string, converter refdex.Converter) *Loader {
	return &Loader{
		Dir:       dir,
		Converter: converter,
		Logger:    slog.Default(),
	}
}

// Load parses index.xml and every interesting compound file into records.
// Compounds that fail to parse are skipped with a warning; only an
// unreadable index fails the load.
func (l *Loader) Load(ctx context.Context) ([]*refdex.Record, error) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}

	indexPath := filepath.Join(l.Dir, "index.xml")
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(indexPath); err != nil {
		if os.IsNotExist(err) {
			return nil, refdex.Errorf(refdex.ENOTFOUND, "no index.xml in %s", l.Dir)
		}
		return nil, refdex.Errorf(refdex.EINVALID, "%s: %v", indexPath, err)
	}

	var records []*refdex.Record
	parentOf := make(map[string]string)

	for _, compound := range doc.FindElements("//compound") {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		refid := compound.SelectAttrValue("refid", "")
		kind, ok := compoundKind(compound.SelectAttrValue("kind", ""))
		if !ok || refid == "" {
			continue
		}

		recs, err := l.loadCompound(refid, kind, parentOf)
		if err != nil {
			logger.Warn("skipping compound", "refid", refid, "err", err)
			continue
		}
		records = append(records, recs...)
	}

	// Parent links come from innerclass/innernamespace references, which
	// may appear before the child compound was parsed.
	for _, rec := range records {
		if rec.ParentID == "" {
			rec.ParentID = parentOf[rec.ID]
		}
	}

	return records, nil
}

// loadCompound parses one compound XML file, falling back to its HTML page.
func (l *Loader) loadCompound(refid string, kind refdex.Kind, parentOf map[string]string) ([]*refdex.Record, error) {
	xmlPath := filepath.Join(l.Dir, refid+".xml")
	if _, err := os.Stat(xmlPath); os.IsNotExist(err) {
		if l.HTMLDir == "" {
			return nil, refdex.Errorf(refdex.ENOTFOUND, "no XML file for %s", refid)
		}
		return l.loadCompoundHTML(refid, kind)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromFile(xmlPath); err != nil {
		return nil, refdex.Errorf(refdex.EINVALID, "%s: %v", xmlPath, err)
	}
	def := doc.FindElement("//compounddef")
	if def == nil {
		return nil, refdex.Errorf(refdex.EINVALID, "%s: no compounddef", xmlPath)
	}

	name := elementText(def.SelectElement("compoundname"))
	if name == "" {
		return nil, refdex.Errorf(refdex.EINVALID, "%s: compound without name", xmlPath)
	}

	compound := &refdex.Record{
		ID:        name,
		Kind:      kind,
		Title:     name,
		Text:      l.description(def),
		SourceURL: l.pageURL(refid),
	}
	records := []*refdex.Record{compound}

	// Nested compounds are listed by reference; remember who owns them.
	for _, tag := range []string{"innerclass", "innernamespace", "innergroup"} {
		for _, inner := range def.FindElements(tag) {
			if child := strings.TrimSpace(inner.Text()); child != "" {
				parentOf[child] = name
			}
		}
	}

	for _, memberdef := range def.FindElements("sectiondef/memberdef") {
		rec := l.memberRecord(memberdef, compound)
		if rec == nil {
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}

// memberRecord builds a record for one memberdef, or nil for kinds that
// do not map onto the element model.
func (l *Loader) memberRecord(def *etree.Element, compound *refdex.Record) *refdex.Record {
	name := elementText(def.SelectElement("name"))
	if name == "" {
		return nil
	}

	kind, ok := memberKind(def.SelectAttrValue("kind", ""), compound.Kind)
	if !ok {
		return nil
	}

	args := elementText(def.SelectElement("argsstring"))
	title := name
	if kind == refdex.KindFunction || kind == refdex.KindMember {
		title = name + args
	}

	text := l.description(def)
	if definition := elementText(def.SelectElement("definition")); definition != "" {
		text += "\nCode: " + definition + args
	}

	return &refdex.Record{
		ID:        compound.ID + "::" + title,
		Kind:      kind,
		Title:     title,
		Text:      strings.TrimSpace(text),
		ParentID:  compound.ID,
		SourceURL: compound.SourceURL,
	}
}

// description merges the brief and detailed descriptions: the brief line
// as plain text, the detailed body converted to Markdown.
func (l *Loader) description(def *etree.Element) string {
	var parts []string

	if brief := plainXML(def.SelectElement("briefdescription")); brief != "" {
		parts = append(parts, brief)
	}

	if detailed := def.SelectElement("detaileddescription"); detailed != nil {
		rendered := renderHTML(detailed)
		if strings.TrimSpace(rendered) != "" && l.Converter != nil {
			md, err := l.Converter.Convert(rendered)
			if err == nil {
				parts = append(parts, strings.TrimSpace(md))
			} else {
				parts = append(parts, plainXML(detailed))
			}
		} else if text := plainXML(detailed); text != "" {
			parts = append(parts, text)
		}
	}

	return strings.Join(parts, "\n\n")
}

// pageURL derives the rendered page URL for a compound, if a base is set.
func (l *Loader) pageURL(refid string) string {
	if l.BaseURL == "" {
		return ""
	}
	return strings.TrimSuffix(l.BaseURL, "/") + "/" + refid + ".html"
}

// compoundKind maps Doxygen compound kinds onto element kinds. File, dir,
// and page compounds do not describe API structure and are skipped.
func compoundKind(kind string) (refdex.Kind, bool) {
	switch kind {
	case "namespace", "group", "module":
		return refdex.KindModule, true
	case "class", "interface":
		return refdex.KindClass, true
	case "struct", "union":
		return refdex.KindStruct, true
	}
	return "", false
}

// memberKind maps Doxygen member kinds onto element kinds. Methods of a
// class are members; free functions in a namespace are functions.
func memberKind(kind string, parent refdex.Kind) (refdex.Kind, bool) {
	switch kind {
	case "function", "signal", "slot":
		if parent == refdex.KindClass || parent == refdex.KindStruct {
			return refdex.KindMember, true
		}
		return refdex.KindFunction, true
	case "variable", "property":
		return refdex.KindAttribute, true
	case "enum", "typedef", "define":
		return refdex.KindDefinition, true
	}
	return "", false
}

// elementText returns the trimmed text of an element, or "" when nil.
func elementText(el *etree.Element) string {
	if el == nil {
		return ""
	}
	return strings.TrimSpace(el.Text())
}

// plainXML flattens a description element to whitespace-normalized text.
func plainXML(el *etree.Element) string {
	if el == nil {
		return ""
	}
	var sb strings.Builder
	collectText(el, &sb)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func collectText(el *etree.Element, sb *strings.Builder) {
	for _, child := range el.Child {
		switch node := child.(type) {
		case *etree.CharData:
			sb.WriteString(node.Data)
			sb.WriteString(" ")
		case *etree.Element:
			collectText(node, sb)
		}
	}
}

// renderHTML rewrites a Doxygen description element as an HTML fragment so
// the generic HTML-to-Markdown converter can handle it.
func renderHTML(el *etree.Element) string {
	var sb strings.Builder
	for _, child := range el.Child {
		renderNode(child, &sb)
	}
	return strings.TrimSpace(sb.String())
}

func renderNode(token etree.Token, sb *strings.Builder) {
	switch node := token.(type) {
	case *etree.CharData:
		sb.WriteString(html.EscapeString(node.Data))
	case *etree.Element:
		renderElement(node, sb)
	}
}

func renderElement(el *etree.Element, sb *strings.Builder) {
	switch el.Tag {
	case "para":
		wrap(el, sb, "p")
	case "bold":
		wrap(el, sb, "strong")
	case "emphasis":
		wrap(el, sb, "em")
	case "computeroutput", "ref":
		wrap(el, sb, "code")
	case "itemizedlist":
		wrap(el, sb, "ul")
	case "orderedlist":
		wrap(el, sb, "ol")
	case "listitem":
		wrap(el, sb, "li")
	case "ulink":
		sb.WriteString(`<a href="`)
		sb.WriteString(html.EscapeString(el.SelectAttrValue("url", "")))
		sb.WriteString(`">`)
		renderChildren(el, sb)
		sb.WriteString("</a>")
	case "programlisting":
		sb.WriteString("<pre><code>")
		for _, line := range el.FindElements("codeline") {
			var lb strings.Builder
			collectCode(line, &lb)
			sb.WriteString(html.EscapeString(lb.String()))
			sb.WriteString("\n")
		}
		sb.WriteString("</code></pre>")
	case "simplesect":
		sb.WriteString("<p><strong>")
		sb.WriteString(html.EscapeString(sectTitle(el.SelectAttrValue("kind", ""))))
		sb.WriteString(":</strong> ")
		renderChildren(el, sb)
		sb.WriteString("</p>")
	case "sp":
		sb.WriteString(" ")
	case "linebreak":
		sb.WriteString("<br/>")
	default:
		renderChildren(el, sb)
	}
}

func wrap(el *etree.Element, sb *strings.Builder, tag string) {
	sb.WriteString("<" + tag + ">")
	renderChildren(el, sb)
	sb.WriteString("</" + tag + ">")
}

func renderChildren(el *etree.Element, sb *strings.Builder) {
	for _, child := range el.Child {
		renderNode(child, sb)
	}
}

// collectCode flattens a codeline, preserving significant spaces.
func collectCode(el *etree.Element, sb *strings.Builder) {
	for _, child := range el.Child {
		switch node := child.(type) {
		case *etree.CharData:
			sb.WriteString(node.Data)
		case *etree.Element:
			if node.Tag == "sp" {
				sb.WriteString(" ")
				continue
			}
			collectCode(node, sb)
		}
	}
}

// sectTitle renders a simplesect kind as a heading word.
func sectTitle(kind string) string {
	switch kind {
	case "return":
		return "Returns"
	case "see":
		return "See also"
	case "note":
		return "Note"
	case "warning":
		return "Warning"
	case "since":
		return "Since"
	case "":
		return "Note"
	}
	return strings.ToUpper(kind[:1]) + kind[1:]
}
