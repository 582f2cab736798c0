package gormdb

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

type txKey struct{}

// Transaction executes fn in a read-write transaction. A transaction
// already present in ctx is reused.
func (d *Database) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return d.transaction(ctx, fn)
}

// ReadOnly executes fn in a read-only transaction. Drivers that ignore the
// read-only hint run it as a plain transaction.
func (d *Database) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return d.transaction(ctx, fn, &sql.TxOptions{ReadOnly: true})
}

func (d *Database) transaction(ctx context.Context, fn func(ctx context.Context) error, opts ...*sql.TxOptions) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	gdb, err := d.handle()
	if err != nil {
		return err
	}
	return gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	}, opts...)
}

// conn returns the transaction carried by ctx, or a session on the pool.
func (d *Database) conn(ctx context.Context) (*gorm.DB, error) {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx), nil
	}
	gdb, err := d.handle()
	if err != nil {
		return nil, err
	}
	return gdb.WithContext(ctx), nil
}
