package pricing

import (
	"github.com/shopspring/decimal"

	"shophub-api/internal/models"
)

// Defaults used when an Engine is built with NewEngine. The exchange rate
// converts the upstream catalog's USD base prices into INR for display and
// charging.
const (
	DefaultExchangeRate          = "83.12"
	DefaultTaxRate               = "0.18"
	DefaultFreeShippingThreshold = "999"
	DefaultFlatShippingFee       = "99"
)

// Engine computes charged amounts from catalog base prices. All operations
// are pure; two identical carts always produce identical totals.
type Engine struct {
	ExchangeRate          decimal.Decimal
	TaxRate               decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
}

func NewEngine() Engine {
	return Engine{
		ExchangeRate:          decimal.RequireFromString(DefaultExchangeRate),
		TaxRate:               decimal.RequireFromString(DefaultTaxRate),
		FreeShippingThreshold: decimal.RequireFromString(DefaultFreeShippingThreshold),
		FlatShippingFee:       decimal.RequireFromString(DefaultFlatShippingFee),
	}
}

// Totals aggregates the derived amounts for a cart. Values are exact;
// rounding happens once, at display.
type Totals struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	Tax        decimal.Decimal `json:"tax"`
	Shipping   decimal.Decimal `json:"shipping"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
}

var oneHundred = decimal.NewFromInt(100)

// UnitPrice converts a base unit price into the charged amount:
// basePrice * rate * (1 - discountPercentage/100).
func (e Engine) UnitPrice(basePrice, discountPercentage float64) decimal.Decimal {
	price := decimal.NewFromFloat(basePrice).Mul(e.ExchangeRate)
	if discountPercentage <= 0 {
		return price
	}
	discount := decimal.NewFromFloat(discountPercentage).Div(oneHundred)
	return price.Mul(decimal.NewFromInt(1).Sub(discount))
}

func (e Engine) LineTotal(line models.CartLine) decimal.Decimal {
	return e.UnitPrice(line.Price, line.DiscountPercentage).Mul(decimal.NewFromInt(int64(line.Quantity)))
}

// Subtotal sums line totals. An empty cart yields zero.
func (e Engine) Subtotal(lines []models.CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(e.LineTotal(line))
	}
	return total
}

func (e Engine) Tax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(e.TaxRate)
}

// Shipping is zero at and above the free threshold, the flat fee below it.
func (e Engine) Shipping(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(e.FreeShippingThreshold) {
		return decimal.Zero
	}
	return e.FlatShippingFee
}

func (e Engine) GrandTotal(lines []models.CartLine) decimal.Decimal {
	subtotal := e.Subtotal(lines)
	return subtotal.Add(e.Tax(subtotal)).Add(e.Shipping(subtotal))
}

// CartTotals derives every aggregate in one pass over the lines.
func (e Engine) CartTotals(lines []models.CartLine) Totals {
	subtotal := e.Subtotal(lines)
	tax := e.Tax(subtotal)
	shipping := e.Shipping(subtotal)
	return Totals{
		Subtotal:   subtotal,
		Tax:        tax,
		Shipping:   shipping,
		GrandTotal: subtotal.Add(tax).Add(shipping),
	}
}

// Rounded applies the single display rounding point (two decimal places).
func (t Totals) Rounded() Totals {
	return Totals{
		Subtotal:   t.Subtotal.Round(2),
		Tax:        t.Tax.Round(2),
		Shipping:   t.Shipping.Round(2),
		GrandTotal: t.GrandTotal.Round(2),
	}
}
