package database

import (
	"context"

	"gorm.io/gorm"

	"github.com/festoofficial/festo/domain"
)

type txKey struct{}

// GormTransactor implements domain.Transactor on top of gorm transactions
type GormTransactor struct {
	db *gorm.DB
}

// NewTransactor creates a transactor bound to the shared pool
func NewTransactor(db *gorm.DB) domain.Transactor {
	return &GormTransactor{db: db}
}

// WithinTx implements domain.Transactor. A call made inside an existing
// transaction joins it instead of opening a new one.
func (t *GormTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// Conn returns the transaction carried by ctx, or db when there is none
func Conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// InTx reports whether ctx carries a transaction
func InTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*gorm.DB)
	return ok
}
