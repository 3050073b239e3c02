package orders

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatIDR renders an amount the way Indonesian invoices do: "Rp 44.400",
// with "." grouping thousands and "," before at most two decimals.
func FormatIDR(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	neg := rounded.IsNegative()
	s := rounded.Abs().String()

	intPart, frac, _ := strings.Cut(s, ".")
	frac = strings.TrimRight(frac, "0")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString("Rp ")
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteByte(',')
		b.WriteString(frac)
	}
	return b.String()
}
