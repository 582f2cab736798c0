package interfaces

import "context"

// Transactor runs functions inside a database transaction. The transaction
// travels in the context handed to fn, so repositories called with that
// context join it. Nested calls reuse the outer transaction.
type Transactor interface {
	// Transaction executes fn in a read-write transaction
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error

	// ReadOnly executes fn in a read-only transaction
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
