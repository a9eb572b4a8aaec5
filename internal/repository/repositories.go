package repository

import (
	"context"
	"database/sql"
	"errors"

	"gorm.io/gorm"
)

// ErrConflict is returned when a compare-and-swap update matched no row,
// meaning another writer changed the record first.
var ErrConflict = errors.New("record was modified concurrently")

// Transactor opens a unit of work and hands a transaction-bound set of
// repositories to fn. Returning an error from fn rolls everything back.
type Transactor interface {
	Transaction(ctx context.Context, opts *sql.TxOptions, fn func(tx *Repositories) error) error
}

// Repositories holds all repository instances
type Repositories struct {
	User        UserRepository
	Guest       GuestRepository
	Dormitory   DormitoryRepository
	Bed         BedRepository
	Assignment  AssignmentRepository
	BarCharge   BarChargeRepository
	ExtraCharge ExtraChargeRepository
	Expense     ExpenseRepository
	Payment     PaymentRepository
	Audit       AuditRepository

	// Tx is nil when the repositories are not backed by a transactional store;
	// WithinTransaction then runs fn directly.
	Tx Transactor
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:        NewUserRepository(db),
		Guest:       NewGuestRepository(db),
		Dormitory:   NewDormitoryRepository(db),
		Bed:         NewBedRepository(db),
		Assignment:  NewAssignmentRepository(db),
		BarCharge:   NewBarChargeRepository(db),
		ExtraCharge: NewExtraChargeRepository(db),
		Expense:     NewExpenseRepository(db),
		Payment:     NewPaymentRepository(db),
		Audit:       NewAuditRepository(db),
		Tx:          &gormTransactor{db: db},
	}
}

// WithinTransaction runs fn in a read-write transaction
func (r *Repositories) WithinTransaction(ctx context.Context, fn func(tx *Repositories) error) error {
	if r.Tx == nil {
		return fn(r)
	}
	return r.Tx.Transaction(ctx, nil, fn)
}

// Snapshot runs fn in a read-only repeatable-read transaction so that every
// query inside observes the same committed state.
func (r *Repositories) Snapshot(ctx context.Context, fn func(tx *Repositories) error) error {
	if r.Tx == nil {
		return fn(r)
	}
	return r.Tx.Transaction(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}, fn)
}

type gormTransactor struct {
	db *gorm.DB
}

func (t *gormTransactor) Transaction(ctx context.Context, opts *sql.TxOptions, fn func(tx *Repositories) error) error {
	var txOpts []*sql.TxOptions
	if opts != nil {
		txOpts = append(txOpts, opts)
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	}, txOpts...)
}
