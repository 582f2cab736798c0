package interfaces

import (
	"errors"
	"fmt"
	"strings"
)

// OrderBy represents sorting configuration
type OrderBy struct {
	Field     string `json:"field"`
	Direction string `json:"direction"` // "asc" or "desc"
}

// Query represents sorting and pagination for list operations
type Query struct {
	OrderBy []OrderBy `json:"order_by,omitempty"`
	Limit   *int      `json:"limit,omitempty"`
	Offset  *int      `json:"offset,omitempty"`
}

// ParseSort turns "field,dir" pairs such as "title,desc" into OrderBy
// entries. A missing direction means ascending.
func ParseSort(values []string) ([]OrderBy, error) {
	var out []OrderBy
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		field, dir, _ := strings.Cut(v, ",")
		field = strings.TrimSpace(field)
		dir = strings.ToLower(strings.TrimSpace(dir))
		if dir == "" {
			dir = "asc"
		}
		if field == "" || (dir != "asc" && dir != "desc") {
			return nil, fmt.Errorf("%w: bad sort %q", ErrInvalidQuery, v)
		}
		out = append(out, OrderBy{Field: field, Direction: dir})
	}
	return out, nil
}

// Common database errors
var (
	ErrNotFound             = errors.New("record not found")
	ErrUniqueConstraint     = errors.New("unique constraint violation")
	ErrForeignKeyConstraint = errors.New("foreign key constraint violation")
	ErrInvalidQuery         = errors.New("invalid query")
	ErrDatabaseNotConnected = errors.New("database not connected")
)

// DatabaseError wraps database-specific errors
type DatabaseError struct {
	Op  string
	Err error
}

func (e *DatabaseError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *DatabaseError) Unwrap() error {
	return e.Err
}
