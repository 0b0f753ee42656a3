package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrInsufficientStock is returned when a conditional stock write would
	// drive the stock level below zero.
	ErrInsufficientStock = errors.New("insufficient stock remaining")
	// ErrStatusConflict is returned when a conditional status transition
	// finds the order in a different state than expected.
	ErrStatusConflict = errors.New("order status conflict")
)

// TxManager runs a unit of work atomically. The gorm implementation opens a
// database transaction and carries it through the context so every repository
// call inside fn joins the same transaction.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type txKey struct{}

type gormTxManager struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) TxManager {
	return &gormTxManager{db}
}

func (m *gormTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn returns the transaction bound to ctx when running inside
// TxManager.WithTransaction, or the base handle otherwise.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}
