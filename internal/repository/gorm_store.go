package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const uniqueViolation = "23505"

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(&gormTx{db: db})
	})
}

type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) ServiceRequests() ServiceRequestRepository {
	return &serviceRequestRepository{db: t.db}
}

func (t *gormTx) Estimates() EstimateRepository {
	return &estimateRepository{db: t.db}
}

func (t *gormTx) Quotes() QuoteRepository {
	return &quoteRepository{db: t.db}
}

func (t *gormTx) WorkOrders() WorkOrderRepository {
	return &workOrderRepository{db: t.db}
}

func (t *gormTx) Invoices() InvoiceRepository {
	return &invoiceRepository{db: t.db}
}

func (t *gormTx) Counters() CounterRepository {
	return &counterRepository{db: t.db}
}

// translateError maps driver errors onto the package sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}

func lockRow(ctx context.Context, db *gorm.DB, table string, id interface{}) error {
	var locked struct{ ID string }
	err := db.WithContext(ctx).
		Table(table).
		Select("id").
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Take(&locked).Error
	return translateError(err)
}
