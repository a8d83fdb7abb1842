// Package fs loads documentation records from structured dump files.
package fs

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fwojciec/refdex"
)

// Ensure RecordSource implements refdex.RecordSource at compile time.
var _ refdex.RecordSource = (*RecordSource)(nil)

// RecordSource reads documentation records from a CSV dump with columns
// name, type, parent, source, description. Rows of type "code" are not
// records themselves: their description is appended to the same-named
// record's text as a Code section.
type RecordSource struct {
	Path   string
	Logger *slog.Logger
}

// NewRecordSource creates a RecordSource reading from the given CSV file.
func NewRecordSource(path string) *RecordSource {
	return &RecordSource{
		Path:   path,
		Logger: slog.Default(),
	}
}

// Load reads the CSV file into records, preserving row order. Malformed
// rows are skipped with a warning; only an unreadable file or a missing
// required column fails the load.
func (s *RecordSource) Load(ctx context.Context) ([]*refdex.Record, error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, refdex.Errorf(refdex.EINVALID, "%s: empty CSV file", s.Path)
	}
	if err != nil {
		return nil, refdex.Errorf(refdex.EINVALID, "%s: %v", s.Path, err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"name", "type"} {
		if _, ok := col[required]; !ok {
			return nil, refdex.Errorf(refdex.EINVALID, "%s: missing %q column", s.Path, required)
		}
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []*refdex.Record
	byName := make(map[string]*refdex.Record)
	line := 1

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, refdex.Errorf(refdex.EINVALID, "%s: line %d: %v", s.Path, line, err)
		}

		name := field(row, "name")
		typ := strings.ToLower(field(row, "type"))
		if name == "" {
			logger.Warn("skipping row without name", "file", s.Path, "line", line)
			continue
		}

		// Code rows attach to the record they describe.
		if typ == "code" {
			rec, ok := byName[name]
			if !ok {
				logger.Warn("dropping code row without matching record",
					"file", s.Path, "line", line, "name", name)
				continue
			}
			rec.Text += "\nCode: " + field(row, "description")
			continue
		}

		kind, ok := mapKind(typ)
		if !ok {
			logger.Warn("skipping row with unknown type",
				"file", s.Path, "line", line, "name", name, "type", typ)
			continue
		}

		rec := &refdex.Record{
			ID:        name,
			Kind:      kind,
			Title:     name,
			Text:      field(row, "description"),
			ParentID:  field(row, "parent"),
			SourceURL: field(row, "source"),
		}
		records = append(records, rec)

		// First record wins for code attachment; the tree reports the
		// duplicate when the records are staged.
		if _, ok := byName[name]; ok {
			logger.Warn("duplicate record name", "file", s.Path, "line", line, "name", name)
		} else {
			byName[name] = rec
		}
	}

	return records, nil
}

// mapKind maps the scraper's type vocabulary onto element kinds.
func mapKind(typ string) (refdex.Kind, bool) {
	switch typ {
	case "module":
		return refdex.KindModule, true
	case "class":
		return refdex.KindClass, true
	case "struct":
		return refdex.KindStruct, true
	case "function", "constructor":
		return refdex.KindFunction, true
	case "member":
		return refdex.KindMember, true
	case "attribute", "variable":
		return refdex.KindAttribute, true
	case "enum", "macro", "typedef", "definition":
		return refdex.KindDefinition, true
	}
	return "", false
}
