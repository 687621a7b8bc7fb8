package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"fieldops-service/internal/model"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertAmount(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, d(want).Equal(got), append([]interface{}{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

func TestApplyEstimateScenario(t *testing.T) {
	e := &model.Estimate{
		ProfitMarginType:  model.AdjustmentPercentage,
		ProfitMarginValue: d("10"),
		VatRate:           d("10"),
		Items: []model.EstimateItem{{
			ItemType:    model.ItemTypeMaterial,
			Name:        "Copper pipe",
			Quantity:    d("2"),
			UnitCost:    d("10"),
			MarkupType:  model.AdjustmentPercentage,
			MarkupValue: d("10"),
		}},
		LaborItems: []model.EstimateLaborItem{{
			Description: "Install",
			Quantity:    d("1"),
			Hours:       d("3"),
			HourlyRate:  d("20"),
		}},
	}

	ApplyEstimate(e)

	assertAmount(t, "22", e.Items[0].TotalPrice)
	assertAmount(t, "60", e.LaborItems[0].TotalPrice)
	assertAmount(t, "20", e.MaterialCost)
	assertAmount(t, "60", e.LaborCost)
	assertAmount(t, "82", e.Subtotal)
	assertAmount(t, "8.2", e.ProfitAmount)
	assertAmount(t, "0", e.DiscountAmount)
	assertAmount(t, "90.2", e.TotalBeforeVat)
	assertAmount(t, "9.02", e.VatAmount)
	assertAmount(t, "99.22", e.Total)
}

func TestSummarizeTotalsInvariant(t *testing.T) {
	types := []model.AdjustmentType{"", model.AdjustmentPercentage, model.AdjustmentFixed}
	values := []string{"0", "7.5", "12.345", "33.33"}
	prices := []decimal.Decimal{d("19.99"), d("0.01"), d("133.37"), d("1000")}

	for _, profitType := range types {
		for _, discountType := range types {
			for _, v := range values {
				s := Summarize(prices, Params{
					ProfitMargin: Adjustment{Type: profitType, Value: d(v)},
					Discount:     Adjustment{Type: discountType, Value: d(v)},
					VatRate:      d("17.5"),
				})
				want := s.Subtotal.Add(s.ProfitAmount).Sub(s.DiscountAmount).Add(s.VatAmount)
				assert.True(t, want.Equal(s.Total), "profit=%s discount=%s value=%s", profitType, discountType, v)
				assert.True(t, s.TotalBeforeVat.Add(s.VatAmount).Equal(s.Total))
				assert.True(t, s.Total.Equal(s.Total.Round(2)), "total precision")
			}
		}
	}
}

func TestSummarizeAppliesDiscountAfterProfit(t *testing.T) {
	s := Summarize([]decimal.Decimal{d("100")}, Params{
		ProfitMargin: Adjustment{Type: model.AdjustmentPercentage, Value: d("20")},
		Discount:     Adjustment{Type: model.AdjustmentPercentage, Value: d("10")},
		VatRate:      d("5"),
	})

	assertAmount(t, "20", s.ProfitAmount)
	assertAmount(t, "12", s.DiscountAmount)
	assertAmount(t, "108", s.TotalBeforeVat)
	assertAmount(t, "5.4", s.VatAmount)
	assertAmount(t, "113.4", s.Total)
}

func TestLineFixedMarkup(t *testing.T) {
	totals := Line(d("3"), d("4.5"), Adjustment{Type: model.AdjustmentFixed, Value: d("2.25")})

	assertAmount(t, "13.5", totals.TotalCost)
	assertAmount(t, "2.25", totals.MarkupAmount)
	assertAmount(t, "15.75", totals.TotalPrice)
}

func TestApplyQuoteSubtotalMatchesLines(t *testing.T) {
	q := &model.Quote{
		DiscountType:  model.AdjustmentFixed,
		DiscountValue: d("5"),
		VatRate:       d("10"),
		Items: []model.QuoteItem{
			{Quantity: d("2"), UnitPrice: d("11")},
			{Quantity: d("1"), UnitPrice: d("60")},
		},
	}

	ApplyQuote(q)

	assertAmount(t, "22", q.Items[0].TotalPrice)
	assertAmount(t, "82", q.Subtotal)
	assertAmount(t, "5", q.DiscountAmount)
	assertAmount(t, "7.7", q.VatAmount)
	assertAmount(t, "84.7", q.Total)
}

func TestApplyInvoiceKeepsPaidAmount(t *testing.T) {
	inv := &model.Invoice{
		VatRate:    d("0"),
		PaidAmount: d("40"),
		Items:      []model.InvoiceItem{{Quantity: d("1"), UnitPrice: d("100")}},
	}

	ApplyInvoice(inv)

	assertAmount(t, "100", inv.Total)
	assertAmount(t, "60", inv.BalanceDue)
}

func TestLaborMinutes(t *testing.T) {
	in := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		out      time.Time
		breakMin int
		want     int
	}{
		{"full shift", in.Add(8 * time.Hour), 30, 450},
		{"partial minute floored", in.Add(90*time.Second + 59*time.Second), 0, 2},
		{"break longer than shift", in.Add(10 * time.Minute), 30, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LaborMinutes(in, tt.out, tt.breakMin))
		})
	}
}

func TestWorkOrderCosts(t *testing.T) {
	items := []model.WorkOrderItem{
		{ItemType: model.ItemTypeMaterial, TotalCost: d("40")},
		{ItemType: model.ItemTypeLabor, TotalCost: d("60")},
		{ItemType: model.ItemTypeEquipment, TotalCost: d("10.5")},
	}
	labor := []model.WorkOrderLabor{
		{TotalMinutes: 90, HourlyRate: decimal.NewNullDecimal(d("30"))},
		{TotalMinutes: 20},
	}

	costs := WorkOrder(items, labor, d("12"), d("25"))

	assertAmount(t, "50.5", costs.MaterialCost)
	assertAmount(t, "53.33", costs.LaborCost)
	assertAmount(t, "115.83", costs.TotalCost)
}
