// Package orders computes the values the dashboard derives from an order:
// line totals, tax sums, the grand total and the status timeline.
package orders

import (
	"github.com/shopspring/decimal"

	"github.com/jcmexdev/bizops-dashboard/internal/domain"
)

// ItemTax is the sum of the tax amounts recorded on one line.
func ItemTax(item domain.OrderItem) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range item.Taxes {
		sum = sum.Add(t.TaxAmount)
	}
	return sum
}

// ItemTotal is price x quantity plus the line's taxes.
func ItemTotal(item domain.OrderItem) decimal.Decimal {
	return item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))).Add(ItemTax(item))
}

// OrderTaxTotal sums ItemTax over every line. A nil order has no tax.
func OrderTaxTotal(o *domain.Order) decimal.Decimal {
	if o == nil {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, item := range o.Items {
		sum = sum.Add(ItemTax(item))
	}
	return sum
}

// GrandTotal is the order total plus shipping. Missing amounts decode as zero.
func GrandTotal(o *domain.Order) decimal.Decimal {
	if o == nil {
		return decimal.Zero
	}
	return o.Total.Add(o.ShippingCost)
}

// Summary bundles the derived values shown next to an order.
type Summary struct {
	Lines      []LineSummary   `json:"lines"`
	TaxTotal   decimal.Decimal `json:"taxTotal"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
}

type LineSummary struct {
	ItemID int64           `json:"itemId"`
	Tax    decimal.Decimal `json:"tax"`
	Total  decimal.Decimal `json:"total"`
}

func Summarize(o *domain.Order) Summary {
	s := Summary{
		Lines:      []LineSummary{},
		TaxTotal:   OrderTaxTotal(o),
		GrandTotal: GrandTotal(o),
	}
	if o == nil {
		return s
	}
	for _, item := range o.Items {
		s.Lines = append(s.Lines, LineSummary{ItemID: item.ID, Tax: ItemTax(item), Total: ItemTotal(item)})
	}
	return s
}
