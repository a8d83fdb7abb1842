package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/fwojciec/refdex"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ refdex.CorpusService = (*CorpusService)(nil)

// CorpusService implements refdex.CorpusService using SQLite.
type CorpusService struct {
	db *DB
}

// NewCorpusService creates a new CorpusService.
func NewCorpusService(db *DB) *CorpusService {
	return &CorpusService{db: db}
}

// CreateCorpus creates a new corpus.
func (s *CorpusService) CreateCorpus(ctx context.Context, corpus *refdex.Corpus) error {
	if err := corpus.Validate(); err != nil {
		return err
	}

	corpus.ID = uuid.New().String()
	now := time.Now().UTC()
	corpus.CreatedAt = now
	corpus.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO corpora (id, name, source_url, model, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, corpus.ID, corpus.Name, corpus.SourceURL, corpus.Model,
		formatRFC3339(corpus.CreatedAt), formatRFC3339(corpus.UpdatedAt))

	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: corpora.name") {
		return refdex.Errorf(refdex.ECONFLICT, "corpus name %q already exists", corpus.Name)
	}
	return err
}

// FindCorpusByID retrieves a corpus by ID.
func (s *CorpusService) FindCorpusByID(ctx context.Context, id string) (*refdex.Corpus, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, source_url, model, created_at, updated_at
		FROM corpora
		WHERE id = ?
	`, id)

	corpus, err := scanCorpus(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, refdex.Errorf(refdex.ENOTFOUND, "corpus not found")
	}
	return corpus, err
}

// FindCorpora retrieves corpora matching the filter.
func (s *CorpusService) FindCorpora(ctx context.Context, filter refdex.CorpusFilter) ([]*refdex.Corpus, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, name, source_url, model, created_at, updated_at FROM corpora WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.Name != nil {
		query.WriteString(" AND name = ?")
		args = append(args, *filter.Name)
	}

	query.WriteString(" ORDER BY created_at DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var corpora []*refdex.Corpus
	for rows.Next() {
		corpus, err := scanCorpus(rows)
		if err != nil {
			return nil, err
		}
		corpora = append(corpora, corpus)
	}

	return corpora, rows.Err()
}

// UpdateCorpus updates an existing corpus.
func (s *CorpusService) UpdateCorpus(ctx context.Context, id string, upd refdex.CorpusUpdate) (*refdex.Corpus, error) {
	// First check if corpus exists
	corpus, err := s.FindCorpusByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Apply updates
	if upd.SourceURL != nil {
		corpus.SourceURL = *upd.SourceURL
	}
	if upd.Model != nil {
		corpus.Model = *upd.Model
	}

	// Validate before persisting
	if err := corpus.Validate(); err != nil {
		return nil, err
	}

	corpus.UpdatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx, `
		UPDATE corpora
		SET source_url = ?, model = ?, updated_at = ?
		WHERE id = ?
	`, corpus.SourceURL, corpus.Model, formatRFC3339(corpus.UpdatedAt), id)

	if err != nil {
		return nil, err
	}

	return corpus, nil
}

// DeleteCorpus permanently removes a corpus. Elements, chunks, and
// embedding records cascade.
func (s *CorpusService) DeleteCorpus(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM corpora WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return refdex.Errorf(refdex.ENOTFOUND, "corpus not found")
	}

	return nil
}

// scanCorpus reads one corpus row from a row scanner.
func scanCorpus(row interface{ Scan(...any) error }) (*refdex.Corpus, error) {
	var corpus refdex.Corpus
	var createdAt, updatedAt string

	if err := row.Scan(&corpus.ID, &corpus.Name, &corpus.SourceURL, &corpus.Model,
		&createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if corpus.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if corpus.UpdatedAt, err = parseRFC3339(updatedAt, "updated_at"); err != nil {
		return nil, err
	}

	return &corpus, nil
}
