package numbering

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldops-service/internal/model"
	"fieldops-service/internal/repository"
	"fieldops-service/internal/repository/memory"
)

func fixedGenerator(year int) *Generator {
	return &Generator{
		now:    func() time.Time { return time.Date(year, 6, 1, 0, 0, 0, 0, time.UTC) },
		suffix: func() string { return "ABC123" },
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		format string
		value  int64
		want   string
	}{
		{"INV-YYYY-NNNN", 7, "INV-2026-0007"},
		{"INV-YYYY-NNNNNN", 123, "INV-2026-000123"},
		{"RCP/NN/YYYY", 4567, "RCP/4567/2026"},
		{"PAY-YYYY-N", 3, "PAY-2026-3"},
		{"INV-YYYY", 9, "INV-20269"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.format, 2026, tt.value))
		})
	}
}

func TestValidateFormat(t *testing.T) {
	assert.NoError(t, ValidateFormat("INV-YYYY-NNNN"))
	assert.NoError(t, ValidateFormat("N"))
	assert.ErrorIs(t, ValidateFormat("INV-YYYY"), ErrInvalidFormat)
}

func TestParseSequence(t *testing.T) {
	assert.Equal(t, 42, ParseSequence("EST-2026-0042", "EST-2026-"))
	assert.Equal(t, 10000, ParseSequence("EST-2026-10000", "EST-2026-"))
	assert.Equal(t, 7, ParseSequence("EST-2026-0007-R2", "EST-2026-"))
	assert.Equal(t, 0, ParseSequence("", "EST-2026-"))
	assert.Equal(t, 0, ParseSequence("WO-2026-0003", "EST-2026-"))
}

func TestNextScanBased(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	companyID := uuid.New()
	gen := fixedGenerator(2026)

	require.NoError(t, store.WithinTx(ctx, func(tx repository.Tx) error {
		first, err := gen.Next(ctx, tx.Counters(), companyID, model.DocumentTypeWorkOrder)
		require.NoError(t, err)
		assert.Equal(t, "WO-2026-0001", first)

		require.NoError(t, tx.WorkOrders().Create(ctx, &model.WorkOrder{CompanyID: companyID, WorkOrderNo: "WO-2026-0041"}))
		require.NoError(t, tx.WorkOrders().Create(ctx, &model.WorkOrder{CompanyID: companyID, WorkOrderNo: "WO-2025-0900"}))

		next, err := gen.Next(ctx, tx.Counters(), companyID, model.DocumentTypeWorkOrder)
		require.NoError(t, err)
		assert.Equal(t, "WO-2026-0042", next)
		return nil
	}))
}

func TestNextCounterBased(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	companyID := uuid.New()
	gen := fixedGenerator(2026)

	require.NoError(t, store.WithinTx(ctx, func(tx repository.Tx) error {
		fallback, err := gen.Next(ctx, tx.Counters(), companyID, model.DocumentTypeInvoice)
		require.NoError(t, err)
		assert.Equal(t, "INV-2026-ABC123", fallback)

		require.NoError(t, tx.Counters().Configure(ctx, &model.DocumentCounter{
			CompanyID:    companyID,
			DocumentType: model.DocumentTypeInvoice,
			Format:       "INV-YYYY-NNNNN",
		}))

		first, err := gen.Next(ctx, tx.Counters(), companyID, model.DocumentTypeInvoice)
		require.NoError(t, err)
		second, err := gen.Next(ctx, tx.Counters(), companyID, model.DocumentTypeInvoice)
		require.NoError(t, err)
		assert.Equal(t, "INV-2026-00001", first)
		assert.Equal(t, "INV-2026-00002", second)
		return nil
	}))
}

func TestRandomSuffix(t *testing.T) {
	suffix := randomSuffix()
	assert.Len(t, suffix, 6)
	assert.NotEqual(t, suffix, randomSuffix())
}

func TestRetryOnCollision(t *testing.T) {
	ctx := context.Background()

	calls := 0
	err := RetryOnCollision(ctx, zerolog.Nop(), 3, func() error {
		calls++
		if calls < 3 {
			return repository.ErrDuplicate
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	err = RetryOnCollision(ctx, zerolog.Nop(), 2, func() error {
		calls++
		return repository.ErrDuplicate
	})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
	assert.Equal(t, 2, calls)

	calls = 0
	business := errors.New("estimate is not editable")
	err = RetryOnCollision(ctx, zerolog.Nop(), 5, func() error {
		calls++
		return business
	})
	assert.ErrorIs(t, err, business)
	assert.Equal(t, 1, calls)
}
