package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/fwojciec/refdex"
)

// Compile-time interface verification.
var _ refdex.ElementService = (*ElementService)(nil)

// ElementService implements refdex.ElementService using SQLite.
type ElementService struct {
	db *DB
}

// NewElementService creates a new ElementService.
func NewElementService(db *DB) *ElementService {
	return &ElementService{db: db}
}

// CreateElements stores a batch of elements in one transaction.
func (s *ElementService) CreateElements(ctx context.Context, elements []*refdex.Element) error {
	if len(elements) == 0 {
		return nil
	}
	for _, el := range elements {
		if err := el.Validate(); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO elements (corpus_id, id, kind, title, text, language, parent_id, source_url, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, el := range elements {
		if _, err := stmt.ExecContext(ctx, el.CorpusID, el.ID, string(el.Kind), el.Title,
			el.Text, el.Language, el.ParentID, el.SourceURL, el.Position); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// FindElementByID retrieves an element by corpus and ID.
func (s *ElementService) FindElementByID(ctx context.Context, corpusID, id string) (*refdex.Element, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT corpus_id, id, kind, title, text, language, parent_id, source_url, position
		FROM elements
		WHERE corpus_id = ? AND id = ?
	`, corpusID, id)

	el, err := scanElement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, refdex.Errorf(refdex.ENOTFOUND, "element not found")
	}
	return el, err
}

// FindElements retrieves elements matching the filter in insertion order,
// which is tree order for a corpus.
func (s *ElementService) FindElements(ctx context.Context, filter refdex.ElementFilter) ([]*refdex.Element, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT corpus_id, id, kind, title, text, language, parent_id, source_url, position FROM elements WHERE 1=1")

	if filter.CorpusID != nil {
		query.WriteString(" AND corpus_id = ?")
		args = append(args, *filter.CorpusID)
	}
	if filter.Kind != nil {
		query.WriteString(" AND kind = ?")
		args = append(args, string(*filter.Kind))
	}
	if filter.ParentID != nil {
		query.WriteString(" AND parent_id = ?")
		args = append(args, *filter.ParentID)
	}

	query.WriteString(" ORDER BY rowid ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var elements []*refdex.Element
	for rows.Next() {
		el, err := scanElement(rows)
		if err != nil {
			return nil, err
		}
		elements = append(elements, el)
	}

	return elements, rows.Err()
}

// Ancestors returns the chain from the element's parent up to its root,
// nearest parent first.
func (s *ElementService) Ancestors(ctx context.Context, corpusID, id string) ([]*refdex.Element, error) {
	el, err := s.FindElementByID(ctx, corpusID, id)
	if err != nil {
		return nil, err
	}

	var out []*refdex.Element
	// Depth cap guards against parent loops in hand-edited data.
	for depth := 0; el.ParentID != "" && depth < 64; depth++ {
		parent, err := s.FindElementByID(ctx, corpusID, el.ParentID)
		if refdex.ErrorCode(err) == refdex.ENOTFOUND {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, parent)
		el = parent
	}
	return out, nil
}

// DeleteElementsByCorpus removes all elements for a corpus.
func (s *ElementService) DeleteElementsByCorpus(ctx context.Context, corpusID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM elements WHERE corpus_id = ?", corpusID)
	return err
}

// scanElement reads one element row from a row scanner.
func scanElement(row interface{ Scan(...any) error }) (*refdex.Element, error) {
	var el refdex.Element
	var kind string

	if err := row.Scan(&el.CorpusID, &el.ID, &kind, &el.Title, &el.Text,
		&el.Language, &el.ParentID, &el.SourceURL, &el.Position); err != nil {
		return nil, err
	}
	el.Kind = refdex.Kind(kind)

	return &el, nil
}
