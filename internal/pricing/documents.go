package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"fieldops-service/internal/model"
)

// ApplyEstimate recomputes every item, labor line and aggregate field of e in place.
func ApplyEstimate(e *model.Estimate) {
	material, equipment, other, labor := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	prices := make([]decimal.Decimal, 0, len(e.Items)+len(e.LaborItems))

	for i := range e.Items {
		item := &e.Items[i]
		totals := Line(item.Quantity, item.UnitCost, Adjustment{Type: item.MarkupType, Value: item.MarkupValue})
		item.TotalCost = totals.TotalCost
		item.MarkupAmount = totals.MarkupAmount
		item.TotalPrice = totals.TotalPrice
		prices = append(prices, totals.TotalPrice)

		switch item.ItemType {
		case model.ItemTypeMaterial:
			material = material.Add(totals.TotalCost)
		case model.ItemTypeEquipment:
			equipment = equipment.Add(totals.TotalCost)
		default:
			other = other.Add(totals.TotalCost)
		}
	}

	for i := range e.LaborItems {
		item := &e.LaborItems[i]
		totals := LaborLine(item.Quantity, item.Hours, item.HourlyRate, Adjustment{Type: item.MarkupType, Value: item.MarkupValue})
		item.TotalCost = totals.TotalCost
		item.MarkupAmount = totals.MarkupAmount
		item.TotalPrice = totals.TotalPrice
		prices = append(prices, totals.TotalPrice)
		labor = labor.Add(totals.TotalCost)
	}

	summary := Summarize(prices, Params{
		ProfitMargin: Adjustment{Type: e.ProfitMarginType, Value: e.ProfitMarginValue},
		Discount:     Adjustment{Type: e.DiscountType, Value: e.DiscountValue},
		VatRate:      e.VatRate,
	})

	e.MaterialCost = material
	e.EquipmentCost = equipment
	e.OtherCost = other
	e.LaborCost = labor
	e.Subtotal = summary.Subtotal
	e.ProfitAmount = summary.ProfitAmount
	e.DiscountAmount = summary.DiscountAmount
	e.TotalBeforeVat = summary.TotalBeforeVat
	e.VatAmount = summary.VatAmount
	e.Total = summary.Total
}

// ApplyQuote prices each line at quantity × unitPrice and recomputes the quote
// totals with the quote discount and VAT rate.
func ApplyQuote(q *model.Quote) {
	products := make([]decimal.Decimal, 0, len(q.Items))
	for i := range q.Items {
		product := q.Items[i].Quantity.Mul(q.Items[i].UnitPrice)
		q.Items[i].TotalPrice = Round(product)
		products = append(products, product)
	}

	summary := Summarize(products, Params{
		Discount: Adjustment{Type: q.DiscountType, Value: q.DiscountValue},
		VatRate:  q.VatRate,
	})
	q.Subtotal = summary.Subtotal
	q.DiscountAmount = summary.DiscountAmount
	q.VatAmount = summary.VatAmount
	q.Total = summary.Total
}

// ApplyInvoice recomputes line and invoice totals. Paid amount is kept and the
// balance follows from it.
func ApplyInvoice(inv *model.Invoice) {
	products := make([]decimal.Decimal, 0, len(inv.Items))
	for i := range inv.Items {
		product := inv.Items[i].Quantity.Mul(inv.Items[i].UnitPrice)
		inv.Items[i].TotalPrice = Round(product)
		products = append(products, product)
	}

	summary := Summarize(products, Params{VatRate: inv.VatRate})
	inv.Subtotal = summary.Subtotal
	inv.VatAmount = summary.VatAmount
	inv.Total = summary.Total
	inv.BalanceDue = inv.Total.Sub(inv.PaidAmount)
}

// LaborMinutes returns worked minutes between clock-in and clock-out less
// breaks, never negative.
func LaborMinutes(clockIn, clockOut time.Time, breakMinutes int) int {
	minutes := int(clockOut.Sub(clockIn)/time.Minute) - breakMinutes
	if minutes < 0 {
		return 0
	}
	return minutes
}

type WorkOrderCosts struct {
	MaterialCost decimal.Decimal
	LaborCost    decimal.Decimal
	TotalCost    decimal.Decimal
}

// WorkOrder sums consumed items and recorded time. Planned LABOR items are not
// material; labor cost comes from time entries only. Entries without a stored
// rate are priced at defaultRate.
func WorkOrder(items []model.WorkOrderItem, labor []model.WorkOrderLabor, additional, defaultRate decimal.Decimal) WorkOrderCosts {
	material := decimal.Zero
	for _, item := range items {
		if item.ItemType == model.ItemTypeLabor {
			continue
		}
		material = material.Add(item.TotalCost)
	}

	sixty := decimal.NewFromInt(60)
	laborCost := decimal.Zero
	for _, entry := range labor {
		rate := defaultRate
		if entry.HourlyRate.Valid {
			rate = entry.HourlyRate.Decimal
		}
		hours := decimal.NewFromInt(int64(entry.TotalMinutes)).Div(sixty)
		laborCost = laborCost.Add(hours.Mul(rate))
	}

	material = Round(material)
	laborCost = Round(laborCost)
	return WorkOrderCosts{
		MaterialCost: material,
		LaborCost:    laborCost,
		TotalCost:    material.Add(laborCost).Add(Round(additional)),
	}
}
