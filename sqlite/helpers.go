package sqlite

import (
	"fmt"
	"strings"
	"time"
)

// formatRFC3339 formats a timestamp for storage. Timestamps are stored as
// RFC3339 text in UTC.
func formatRFC3339(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// parseRFC3339 parses a stored RFC3339 timestamp, naming the field on failure.
func parseRFC3339(value, fieldName string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", fieldName, err)
	}
	return t, nil
}

// appendPagination appends LIMIT and OFFSET clauses to a query builder if values are > 0.
func appendPagination(query *strings.Builder, args *[]any, limit, offset int) {
	if limit > 0 {
		query.WriteString(" LIMIT ?")
		*args = append(*args, limit)
	}
	if offset > 0 {
		query.WriteString(" OFFSET ?")
		*args = append(*args, offset)
	}
}
