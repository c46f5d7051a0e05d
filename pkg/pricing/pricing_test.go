package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shophub-api/internal/models"
)

func testEngine() Engine {
	return NewEngine()
}

func TestUnitPrice(t *testing.T) {
	e := testEngine()

	tests := []struct {
		name     string
		price    float64
		discount float64
		expected string
	}{
		{"no discount", 10, 0, "831.2"},
		{"10 percent off", 10, 10, "748.08"},
		{"full discount", 10, 100, "0"},
		{"zero price", 0, 50, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.UnitPrice(tt.price, tt.discount)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.expected)),
				"got %s, want %s", got, tt.expected)
		})
	}
}

func TestLineTotal(t *testing.T) {
	e := testEngine()
	line := models.CartLine{Price: 10, DiscountPercentage: 10, Quantity: 3}

	// 10 * 83.12 * 0.9 * 3
	assert.True(t, e.LineTotal(line).Equal(decimal.RequireFromString("2244.24")))
}

func TestSubtotal_EmptyCartIsZero(t *testing.T) {
	e := testEngine()
	assert.True(t, e.Subtotal(nil).IsZero())
}

func TestSubtotal_EqualsSumOfLineTotals(t *testing.T) {
	e := testEngine()
	lines := []models.CartLine{
		{Price: 9.99, DiscountPercentage: 12.96, Quantity: 2},
		{Price: 1499, DiscountPercentage: 0, Quantity: 1},
		{Price: 49.5, DiscountPercentage: 33.3, Quantity: 7},
	}

	sum := decimal.Zero
	for _, line := range lines {
		sum = sum.Add(e.LineTotal(line))
	}
	assert.True(t, e.Subtotal(lines).Equal(sum), "subtotal must equal the exact sum of line totals")
}

func TestShipping_Boundary(t *testing.T) {
	e := testEngine()

	tests := []struct {
		name     string
		subtotal string
		expected string
	}{
		{"strictly below threshold", "998.99", "99"},
		{"exactly at threshold", "999.00", "0"},
		{"above threshold", "999.01", "0"},
		{"zero subtotal", "0", "99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Shipping(decimal.RequireFromString(tt.subtotal))
			assert.True(t, got.Equal(decimal.RequireFromString(tt.expected)),
				"shipping(%s) = %s, want %s", tt.subtotal, got, tt.expected)
		})
	}
}

func TestTax(t *testing.T) {
	e := testEngine()
	got := e.Tax(decimal.RequireFromString("100"))
	assert.True(t, got.Equal(decimal.RequireFromString("18")))
}

func TestCartTotals_Consistent(t *testing.T) {
	e := testEngine()
	lines := []models.CartLine{
		{Price: 25, DiscountPercentage: 5, Quantity: 2},
		{Price: 3.2, Quantity: 4},
	}

	totals := e.CartTotals(lines)
	require.True(t, totals.Subtotal.Equal(e.Subtotal(lines)))
	assert.True(t, totals.GrandTotal.Equal(totals.Subtotal.Add(totals.Tax).Add(totals.Shipping)))
	assert.True(t, e.GrandTotal(lines).Equal(totals.GrandTotal))
}

func TestCartTotals_Deterministic(t *testing.T) {
	e := testEngine()
	lines := []models.CartLine{
		{Price: 119.99, DiscountPercentage: 7.5, Quantity: 3},
		{Price: 0.99, Quantity: 11},
	}

	first := e.CartTotals(lines)
	for i := 0; i < 10; i++ {
		again := e.CartTotals(lines)
		assert.True(t, first.GrandTotal.Equal(again.GrandTotal), "identical carts must yield identical totals")
	}
}

func TestTotalsRounded(t *testing.T) {
	totals := Totals{
		Subtotal:   decimal.RequireFromString("123.456"),
		Tax:        decimal.RequireFromString("22.2222"),
		Shipping:   decimal.RequireFromString("99"),
		GrandTotal: decimal.RequireFromString("244.6782"),
	}

	rounded := totals.Rounded()
	assert.Equal(t, "123.46", rounded.Subtotal.String())
	assert.Equal(t, "22.22", rounded.Tax.String())
	assert.Equal(t, "99", rounded.Shipping.String())
	assert.Equal(t, "244.68", rounded.GrandTotal.String())
}
