// Package pricing turns line items and pricing parameters into itemized and
// aggregate totals. All functions are pure; amounts are rounded to two decimals
// half away from zero.
package pricing

import (
	"github.com/shopspring/decimal"

	"fieldops-service/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Round rounds to currency precision.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Adjustment is a markup, profit margin or discount expressed either as a
// percentage of a base amount or as a fixed amount.
type Adjustment struct {
	Type  model.AdjustmentType
	Value decimal.Decimal
}

// Amount returns the adjustment applied to base, unrounded.
func (a Adjustment) Amount(base decimal.Decimal) decimal.Decimal {
	switch a.Type {
	case model.AdjustmentPercentage:
		return base.Mul(a.Value).Div(hundred)
	case model.AdjustmentFixed:
		return a.Value
	}
	return decimal.Zero
}

type LineTotals struct {
	TotalCost    decimal.Decimal
	MarkupAmount decimal.Decimal
	TotalPrice   decimal.Decimal
}

// Line prices a single item: totalCost = quantity × unitCost and
// totalPrice = totalCost + markup.
func Line(quantity, unitCost decimal.Decimal, markup Adjustment) LineTotals {
	totalCost := Round(quantity.Mul(unitCost))
	markupAmount := Round(markup.Amount(totalCost))
	return LineTotals{
		TotalCost:    totalCost,
		MarkupAmount: markupAmount,
		TotalPrice:   totalCost.Add(markupAmount),
	}
}

// LaborLine prices quantity workers for hours at rate.
func LaborLine(quantity, hours, rate decimal.Decimal, markup Adjustment) LineTotals {
	return Line(quantity, hours.Mul(rate), markup)
}

type Params struct {
	ProfitMargin Adjustment
	Discount     Adjustment
	VatRate      decimal.Decimal
}

type Summary struct {
	Subtotal       decimal.Decimal
	ProfitAmount   decimal.Decimal
	DiscountAmount decimal.Decimal
	TotalBeforeVat decimal.Decimal
	VatAmount      decimal.Decimal
	Total          decimal.Decimal
}

// Summarize aggregates line prices. Profit is applied to the subtotal, the
// discount to subtotal plus profit, and VAT to the discounted amount. The order
// determines the customer price and must not change.
func Summarize(prices []decimal.Decimal, p Params) Summary {
	subtotal := decimal.Zero
	for _, price := range prices {
		subtotal = subtotal.Add(price)
	}
	subtotal = Round(subtotal)

	profit := Round(p.ProfitMargin.Amount(subtotal))
	discount := Round(p.Discount.Amount(subtotal.Add(profit)))
	beforeVat := subtotal.Add(profit).Sub(discount)
	vat := Round(beforeVat.Mul(p.VatRate).Div(hundred))

	return Summary{
		Subtotal:       subtotal,
		ProfitAmount:   profit,
		DiscountAmount: discount,
		TotalBeforeVat: beforeVat,
		VatAmount:      vat,
		Total:          beforeVat.Add(vat),
	}
}
