package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldops-service/internal/config"
	"fieldops-service/internal/db"
	"fieldops-service/internal/model"
	"fieldops-service/internal/repository"
)

// newGormStore connects to TEST_DATABASE_URL and migrates it. Tests using it
// are skipped when the variable is not set.
func newGormStore(t *testing.T) *repository.GormStore {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	database, err := db.New(&config.Config{
		Environment: "test",
		DB:          config.DBConfig{DSN: dsn, MaxOpenConns: 5, MaxIdleConns: 2, ConnMaxLifetime: time.Minute},
	}, zerolog.Nop())
	require.NoError(t, err)
	return repository.NewGormStore(database)
}

func seedRequest(t *testing.T, ctx context.Context, store repository.Store, companyID uuid.UUID) *model.ServiceRequest {
	t.Helper()
	request := &model.ServiceRequest{
		CompanyID:     companyID,
		CustomerName:  "Integration Customer",
		Status:        model.ServiceRequestStatusNew,
		ServiceCharge: decimal.Zero,
		CreatedBy:     uuid.New(),
	}
	require.NoError(t, store.WithinTx(ctx, func(tx repository.Tx) error {
		return tx.ServiceRequests().Create(ctx, request)
	}))
	return request
}

func TestGormDuplicateEstimateNumber(t *testing.T) {
	store := newGormStore(t)
	ctx := context.Background()
	companyID := uuid.New()
	request := seedRequest(t, ctx, store, companyID)
	number := fmt.Sprintf("EST-%d-0001", time.Now().Year())

	insert := func() error {
		return store.WithinTx(ctx, func(tx repository.Tx) error {
			return tx.Estimates().Create(ctx, &model.Estimate{
				CompanyID:        companyID,
				EstimateNo:       number,
				ServiceRequestID: request.ID,
				Version:          1,
				IsLatestVersion:  true,
				Status:           model.EstimateStatusDraft,
				CreatedBy:        uuid.New(),
			})
		})
	}
	require.NoError(t, insert())
	assert.ErrorIs(t, insert(), repository.ErrDuplicate)

	var latest string
	require.NoError(t, store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		latest, err = tx.Counters().LatestNumber(ctx, companyID, model.DocumentTypeEstimate, fmt.Sprintf("EST-%d-", time.Now().Year()))
		return err
	}))
	assert.Equal(t, number, latest)
}

func TestGormCounterIncrement(t *testing.T) {
	store := newGormStore(t)
	ctx := context.Background()
	companyID := uuid.New()

	err := store.WithinTx(ctx, func(tx repository.Tx) error {
		_, _, err := tx.Counters().Increment(ctx, companyID, model.DocumentTypeInvoice)
		return err
	})
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, store.WithinTx(ctx, func(tx repository.Tx) error {
		return tx.Counters().Configure(ctx, &model.DocumentCounter{
			CompanyID:    companyID,
			DocumentType: model.DocumentTypeInvoice,
			Format:       "INV-YYYY-NNNNN",
		})
	}))

	for want := int64(1); want <= 2; want++ {
		var (
			value  int64
			format string
		)
		require.NoError(t, store.WithinTx(ctx, func(tx repository.Tx) error {
			var err error
			value, format, err = tx.Counters().Increment(ctx, companyID, model.DocumentTypeInvoice)
			return err
		}))
		assert.Equal(t, want, value)
		assert.Equal(t, "INV-YYYY-NNNNN", format)
	}
}

func TestGormOneOpenLaborEntryPerEmployee(t *testing.T) {
	store := newGormStore(t)
	ctx := context.Background()
	companyID := uuid.New()
	request := seedRequest(t, ctx, store, companyID)

	workOrder := &model.WorkOrder{
		CompanyID:        companyID,
		WorkOrderNo:      fmt.Sprintf("WO-%d-%s", time.Now().Year(), uuid.NewString()[:6]),
		ServiceRequestID: request.ID,
		Status:           model.WorkOrderStatusInProgress,
		Priority:         model.WorkOrderPriorityMedium,
		Title:            "Replace valve",
		CreatedBy:        uuid.New(),
	}
	require.NoError(t, store.WithinTx(ctx, func(tx repository.Tx) error {
		return tx.WorkOrders().Create(ctx, workOrder)
	}))

	employeeID := uuid.New()
	clockIn := func() (*model.WorkOrderLabor, error) {
		entry := &model.WorkOrderLabor{WorkOrderID: workOrder.ID, EmployeeID: employeeID, ClockInAt: time.Now().UTC()}
		err := store.WithinTx(ctx, func(tx repository.Tx) error {
			return tx.WorkOrders().CreateLabor(ctx, entry)
		})
		return entry, err
	}

	first, err := clockIn()
	require.NoError(t, err)
	_, err = clockIn()
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	out := time.Now().UTC()
	first.ClockOutAt = &out
	require.NoError(t, store.WithinTx(ctx, func(tx repository.Tx) error {
		return tx.WorkOrders().UpdateLabor(ctx, first)
	}))
	_, err = clockIn()
	assert.NoError(t, err, "a closed entry does not block a new one")
}
