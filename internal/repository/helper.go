package repository

import (
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type QueryType string

type SortOrder string

const (
	QueryTypeSelect QueryType = "select"
	QueryTypeCount  QueryType = "count"

	SortOrderAsc  SortOrder = "ASC"
	SortOrderDesc SortOrder = "DESC"

	DefaultLimit = 20
	MaxLimit     = 100

	defaultSortColumn = "requested_at"
)

// sortableColumns lists the timestamp columns a cursor can be built on.
var sortableColumns = map[string]bool{
	"requested_at": true,
	"created_at":   true,
	"updated_at":   true,
}

var (
	ErrInvalidCursor = errors.New("invalid cursor")
	ErrInvalidSort   = errors.New("invalid sort")
)

type QueryOptions struct {
	Limit  uint32
	Cursor *string
	Sort   *string
}

type SortResult struct {
	Column string
	Order  SortOrder
}

func parseSort(sort *string) (SortResult, error) {
	if sort == nil || *sort == "" {
		return SortResult{
			Column: defaultSortColumn,
			Order:  SortOrderDesc,
		}, nil
	}

	parts := strings.Split(*sort, ":")
	if len(parts) != 2 {
		return SortResult{}, fmt.Errorf("%w: expected column:order", ErrInvalidSort)
	}
	column := parts[0]
	if !sortableColumns[column] {
		return SortResult{}, fmt.Errorf("%w: unknown column %s", ErrInvalidSort, column)
	}

	switch parts[1] {
	case "asc":
		return SortResult{Column: column, Order: SortOrderAsc}, nil
	case "desc":
		return SortResult{Column: column, Order: SortOrderDesc}, nil
	}

	return SortResult{}, fmt.Errorf("%w: unknown order %s", ErrInvalidSort, parts[1])
}

func decodeCursor(cursor string) (time.Time, uuid.UUID, error) {
	decoded, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}

	parts := strings.Split(string(decoded), "|")
	if len(parts) != 2 {
		return time.Time{}, uuid.Nil, ErrInvalidCursor
	}

	timeV, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return time.Time{}, uuid.Nil, fmt.Errorf("%w: bad timestamp: %v", ErrInvalidCursor, err)
	}

	id, err := uuid.Parse(parts[1])
	if err != nil {
		return time.Time{}, uuid.Nil, fmt.Errorf("%w: bad id: %v", ErrInvalidCursor, err)
	}

	return timeV, id, nil
}

func EncodeCursor(timev time.Time, id uuid.UUID) string {
	cursorStr := fmt.Sprintf("%s|%s", timev.Format(time.RFC3339Nano), id.String())
	return base64.StdEncoding.EncodeToString([]byte(cursorStr))
}

// ClampLimit applies the default page size and the upper bound.
func ClampLimit(limit uint32) uint32 {
	if limit == 0 {
		return DefaultLimit
	}
	return min(limit, MaxLimit)
}

// ApplyPagination orders by the sort column with id as tie-break and fetches one extra
// row so the caller can tell whether another page exists.
func ApplyPagination(builder sq.SelectBuilder, opts QueryOptions) (sq.SelectBuilder, SortResult, error) {
	sortResult, err := parseSort(opts.Sort)
	if err != nil {
		return builder, sortResult, err
	}

	if opts.Cursor != nil {
		cursorTime, cursorID, err := decodeCursor(*opts.Cursor)
		if err != nil {
			return builder, sortResult, err
		}

		switch sortResult.Order {
		case SortOrderAsc:
			builder = builder.Where(sq.Or{
				sq.Gt{sortResult.Column: cursorTime},
				sq.And{
					sq.Eq{sortResult.Column: cursorTime},
					sq.GtOrEq{"id": cursorID.String()},
				},
			})
		case SortOrderDesc:
			builder = builder.Where(sq.Or{
				sq.Lt{sortResult.Column: cursorTime},
				sq.And{
					sq.Eq{sortResult.Column: cursorTime},
					sq.LtOrEq{"id": cursorID.String()},
				},
			})
		}
	}

	order := string(sortResult.Order)
	builder = builder.OrderBy(fmt.Sprintf("%s %s, id %s", sortResult.Column, order, order))
	builder = builder.Limit(uint64(ClampLimit(opts.Limit) + 1))
	return builder, sortResult, nil
}

type ListResult[T any] struct {
	Items      []*T
	NextCursor *string
}

func ToNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}

	return sql.NullTime{Time: *t, Valid: true}
}

func ToNullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{Valid: false}
	}

	return sql.NullString{String: *s, Valid: true}
}

// IsUniqueViolation reports whether err is a postgres unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
