// Package store is the persistence layer for clients, treatment methods,
// treatments and invoices. It enforces the write-time invariants of the
// billing domain and owns the atomic claim-and-commit step that turns
// treatments into an invoice.
package store

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"billing-backend/internal/apperr"
)

type Options struct {
	InvoicePrefix string
	DueDays       int
}

type Store struct {
	DB   *gorm.DB
	opts Options
	now  func() time.Time
}

func New(db *gorm.DB, opts Options) *Store {
	if opts.InvoicePrefix == "" {
		opts.InvoicePrefix = "FACT"
	}
	return &Store{DB: db, opts: opts, now: time.Now}
}

// storageError maps gorm errors onto the domain taxonomy.
func storageError(err error, notFound string, message string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("%s", notFound)
	}
	return apperr.Storage(message, err)
}
