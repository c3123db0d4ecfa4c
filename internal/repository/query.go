package repository

import (
	"errors"
	"log/slog"
)

// Query restricts a List call. The zero value lists everything in insertion
// order up to the default limit.
type Query struct {
	// Category filters by exact category match when non-empty.
	Category string

	Limit int

	Paginator *Paginator
}

// NewQuery creates an empty query.
func NewQuery() *Query {
	return &Query{}
}

// WithCategory restricts the query to a single category.
func (q *Query) WithCategory(category string) *Query {
	q.Category = category
	return q
}

// ApplyPagination sets the page size and decodes an optional page token.
func (q *Query) ApplyPagination(limit int32, token string) error {
	queryLimit := DefaultPaginationLimit
	if limit > 0 {
		queryLimit = min(maxPaginationLimit, int(limit))
	}
	q.Limit = queryLimit

	if token == "" {
		return nil
	}

	paginator, err := DecodePageToken(token)
	if err != nil {
		slog.Error("failed to decode page token", slog.Any("err", err), slog.String("token", token))
		return errors.New("invalid page token")
	}
	q.Paginator = paginator
	return nil
}
