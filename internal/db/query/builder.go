package query

import (
	"fmt"

	"github.com/sampleprojects/postandcomments/internal/db/interfaces"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaxLimit caps the page size of a single list query.
const MaxLimit = 100

// Builder applies the sort and pagination of an interfaces.Query to a
// GORM statement. Only whitelisted fields can be sorted on.
type Builder struct {
	columns map[string]string
}

// NewBuilder creates a builder; columns maps request field names to
// column names.
func NewBuilder(columns map[string]string) *Builder {
	return &Builder{columns: columns}
}

// Apply adds ORDER BY, LIMIT and OFFSET clauses. Results are always
// ordered by id last so pages are stable.
func (b *Builder) Apply(db *gorm.DB, q *interfaces.Query) (*gorm.DB, error) {
	if q == nil {
		return db.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}}), nil
	}

	byID := false
	for _, o := range q.OrderBy {
		column, ok := b.columns[o.Field]
		if !ok {
			return nil, fmt.Errorf("%w: cannot sort by %q", interfaces.ErrInvalidQuery, o.Field)
		}
		if column == "id" {
			byID = true
		}
		db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: o.Direction == "desc"})
	}
	if !byID {
		db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}})
	}

	if q.Limit != nil {
		limit := *q.Limit
		if limit < 0 {
			return nil, fmt.Errorf("%w: negative limit", interfaces.ErrInvalidQuery)
		}
		if limit > MaxLimit {
			limit = MaxLimit
		}
		db = db.Limit(limit)
	}
	if q.Offset != nil {
		if *q.Offset < 0 {
			return nil, fmt.Errorf("%w: negative offset", interfaces.ErrInvalidQuery)
		}
		db = db.Offset(*q.Offset)
	}
	return db, nil
}
