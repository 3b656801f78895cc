// Package money is the tax and totals engine. All amounts are
// shopspring decimals rounded to 2 places, half up. Invoice totals are sums
// of already-rounded line values so rounding error stays bounded per line
// instead of accumulating across the aggregate.
package money

import (
	"github.com/shopspring/decimal"

	"github.com/yijian0905/erp-einvoice/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Round2 rounds to 2 decimal places, half up.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// LineAmounts holds the computed amounts for one line.
type LineAmounts struct {
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// ComputeLineTotal computes subtotal, tax and total for a single line.
//
// Tax is quantity x unitPrice x taxRate / 100, rounded to 2 places. When an
// exemption code is present the taxable base is reduced by ExemptionAmount
// before the rate applies; the base never goes below zero.
func ComputeLineTotal(line model.Line) LineAmounts {
	gross := Round2(line.Quantity.Mul(line.UnitPrice))
	subtotal := Round2(gross.Sub(line.DiscountAmount))

	taxable := subtotal
	if line.ExemptionCode != "" {
		taxable = Round2(taxable.Sub(line.ExemptionAmount))
		if taxable.IsNegative() {
			taxable = decimal.Zero
		}
	}

	tax := Round2(taxable.Mul(line.TaxRate).Div(hundred))
	total := Round2(subtotal.Add(tax))

	return LineAmounts{Subtotal: subtotal, TaxAmount: tax, Total: total}
}

// ComputeInvoiceTotals aggregates invoice-level totals from per-line amounts
// plus an invoice-level discount. Inputs are the raw lines; each line is
// computed (and rounded) individually, then summed.
func ComputeInvoiceTotals(lines []model.Line, discount decimal.Decimal) model.Totals {
	var excl, tax, lineDiscount decimal.Decimal
	for _, line := range lines {
		amounts := ComputeLineTotal(line)
		excl = excl.Add(amounts.Subtotal)
		tax = tax.Add(amounts.TaxAmount)
		lineDiscount = lineDiscount.Add(line.DiscountAmount)
	}

	incl := Round2(excl.Add(tax))
	payable := Round2(incl.Sub(discount))

	return model.Totals{
		TotalExcludingTax: Round2(excl),
		TotalIncludingTax: incl,
		TotalDiscount:     Round2(lineDiscount.Add(discount)),
		TotalTax:          Round2(tax),
		TotalPayable:      payable,
	}
}

// Apply fills the computed amounts on every line of doc and sets the invoice
// totals. Lines are renumbered sequentially from 1.
func Apply(doc *model.Document) {
	for i := range doc.Lines {
		amounts := ComputeLineTotal(doc.Lines[i])
		doc.Lines[i].Number = i + 1
		doc.Lines[i].Subtotal = amounts.Subtotal
		doc.Lines[i].TaxAmount = amounts.TaxAmount
		doc.Lines[i].Total = amounts.Total
	}
	doc.Totals = ComputeInvoiceTotals(doc.Lines, doc.Discount)
}
