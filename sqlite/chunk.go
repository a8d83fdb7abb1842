package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/fwojciec/refdex"
)

// Compile-time interface verification.
var _ refdex.ChunkService = (*ChunkService)(nil)

// ChunkService implements refdex.ChunkService using SQLite.
type ChunkService struct {
	db *DB
}

// NewChunkService creates a new ChunkService.
func NewChunkService(db *DB) *ChunkService {
	return &ChunkService{db: db}
}

// CreateChunks stores a batch of chunks in one transaction.
func (s *ChunkService) CreateChunks(ctx context.Context, chunks []*refdex.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	for _, chunk := range chunks {
		if err := chunk.Validate(); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (corpus_id, id, element_id, parent_chunk_id, granularity, title, text,
			token_count, source_element_ids, source_url, language, content_hash, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		sourceIDs, err := json.Marshal(chunk.SourceElementIDs)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, chunk.CorpusID, chunk.ID, chunk.ElementID,
			chunk.ParentChunkID, string(chunk.Granularity), chunk.Title, chunk.Text,
			chunk.TokenCount, string(sourceIDs), chunk.SourceURL, chunk.Language,
			chunk.ContentHash, chunk.Position); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// FindChunkByID retrieves a chunk by corpus and ID.
func (s *ChunkService) FindChunkByID(ctx context.Context, corpusID, id string) (*refdex.Chunk, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT corpus_id, id, element_id, parent_chunk_id, granularity, title, text,
			token_count, source_element_ids, source_url, language, content_hash, position
		FROM chunks
		WHERE corpus_id = ? AND id = ?
	`, corpusID, id)

	chunk, err := scanChunk(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, refdex.Errorf(refdex.ENOTFOUND, "chunk not found")
	}
	return chunk, err
}

// FindChunksByIDs retrieves chunks by ID, preserving the requested order.
// IDs with no stored chunk are skipped.
func (s *ChunkService) FindChunksByIDs(ctx context.Context, corpusID string, ids []string) ([]*refdex.Chunk, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var query strings.Builder
	query.WriteString(`
		SELECT corpus_id, id, element_id, parent_chunk_id, granularity, title, text,
			token_count, source_element_ids, source_url, language, content_hash, position
		FROM chunks
		WHERE corpus_id = ? AND id IN (`)
	args := make([]any, 0, len(ids)+1)
	args = append(args, corpusID)
	for i, id := range ids {
		if i > 0 {
			query.WriteString(", ")
		}
		query.WriteString("?")
		args = append(args, id)
	}
	query.WriteString(")")

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[string]*refdex.Chunk, len(ids))
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		byID[chunk.ID] = chunk
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	chunks := make([]*refdex.Chunk, 0, len(byID))
	for _, id := range ids {
		if chunk, ok := byID[id]; ok {
			chunks = append(chunks, chunk)
		}
	}
	return chunks, nil
}

// FindChunks retrieves chunks matching the filter in position order.
func (s *ChunkService) FindChunks(ctx context.Context, filter refdex.ChunkFilter) ([]*refdex.Chunk, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`SELECT corpus_id, id, element_id, parent_chunk_id, granularity, title, text,
		token_count, source_element_ids, source_url, language, content_hash, position
		FROM chunks WHERE 1=1`)

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.CorpusID != nil {
		query.WriteString(" AND corpus_id = ?")
		args = append(args, *filter.CorpusID)
	}
	if filter.ElementID != nil {
		query.WriteString(" AND element_id = ?")
		args = append(args, *filter.ElementID)
	}
	if filter.Granularity != nil {
		query.WriteString(" AND granularity = ?")
		args = append(args, string(*filter.Granularity))
	}

	query.WriteString(" ORDER BY position ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*refdex.Chunk
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}

	return chunks, rows.Err()
}

// DeleteChunksByCorpus removes all chunks for a corpus. Embedding records
// are kept so an unchanged chunk created by the next indexing run still
// skips re-embedding.
func (s *ChunkService) DeleteChunksByCorpus(ctx context.Context, corpusID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM chunks WHERE corpus_id = ?", corpusID)
	return err
}

// EmbeddedHash returns the content hash recorded when the chunk was last
// embedded under the given model, or "" if it never was.
func (s *ChunkService) EmbeddedHash(ctx context.Context, corpusID, chunkID, model string) (string, error) {
	var hash string
	err := s.db.QueryRowContext(ctx, `
		SELECT content_hash FROM embeddings
		WHERE corpus_id = ? AND chunk_id = ? AND model = ?
	`, corpusID, chunkID, model).Scan(&hash)

	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return hash, nil
}

// MarkEmbedded records that the chunk's current content hash has been
// embedded under the given model.
func (s *ChunkService) MarkEmbedded(ctx context.Context, corpusID, chunkID, model, contentHash string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO embeddings (corpus_id, chunk_id, model, content_hash, embedded_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (corpus_id, chunk_id, model) DO UPDATE SET
			content_hash = excluded.content_hash,
			embedded_at = excluded.embedded_at
	`, corpusID, chunkID, model, contentHash, formatRFC3339(time.Now()))
	return err
}

// scanChunk reads one chunk row from a row scanner.
func scanChunk(row interface{ Scan(...any) error }) (*refdex.Chunk, error) {
	var chunk refdex.Chunk
	var granularity, sourceIDs string

	if err := row.Scan(&chunk.CorpusID, &chunk.ID, &chunk.ElementID, &chunk.ParentChunkID,
		&granularity, &chunk.Title, &chunk.Text, &chunk.TokenCount, &sourceIDs,
		&chunk.SourceURL, &chunk.Language, &chunk.ContentHash, &chunk.Position); err != nil {
		return nil, err
	}
	chunk.Granularity = refdex.Granularity(granularity)

	if err := json.Unmarshal([]byte(sourceIDs), &chunk.SourceElementIDs); err != nil {
		return nil, err
	}

	return &chunk, nil
}
