package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		expected string
	}{
		{"zero", "0", "₹0"},
		{"hundreds", "831.2", "₹831"},
		{"thousands", "1234", "₹1,234"},
		{"lakhs", "1234567", "₹12,34,567"},
		{"crores", "12345678", "₹1,23,45,678"},
		{"rounds half up", "998.5", "₹999"},
		{"negative", "-1234", "-₹1,234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatPrice(decimal.RequireFromString(tt.amount))
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFormatCategoryName(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{"mens-shoes", "Men's Shoes"},
		{"womens-jewellery", "Women's Jewellery"},
		{"home-decoration", "Home Decoration"},
		{"laptops", "Laptops"},
		{"", "Uncategorized"},
		{"  ", "Uncategorized"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.out, FormatCategoryName(tt.in), "input %q", tt.in)
	}
}

func TestCategoryDisplayName_FallsBackForUnknown(t *testing.T) {
	assert.Equal(t, "Smartphones", CategoryDisplayName("smartphones"))
	assert.Equal(t, "Garden Tools", CategoryDisplayName("garden-tools"))
}

func TestStockStatus(t *testing.T) {
	assert.Equal(t, "Out of Stock", StockStatus(0))
	assert.Equal(t, "Out of Stock", StockStatus(-1))
	assert.Equal(t, "Low Stock", StockStatus(10))
	assert.Equal(t, "In Stock", StockStatus(11))
}

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("user@example.com"))
	assert.False(t, ValidateEmail("user@example"))
	assert.False(t, ValidateEmail("user example@x.com"))
	assert.False(t, ValidateEmail(""))
}

func TestValidatePhone(t *testing.T) {
	assert.True(t, ValidatePhone("9876543210"))
	assert.True(t, ValidatePhone("6000000000"))
	assert.False(t, ValidatePhone("5876543210"), "must start with 6-9")
	assert.False(t, ValidatePhone("98765"))
	assert.False(t, ValidatePhone("98765432101"))
}

func TestValidatePINCode(t *testing.T) {
	assert.True(t, ValidatePINCode("560038"))
	assert.False(t, ValidatePINCode("060038"), "first digit cannot be 0")
	assert.False(t, ValidatePINCode("5600"))
	assert.False(t, ValidatePINCode("56003a"))
}

func TestOrderNumber(t *testing.T) {
	now := time.UnixMilli(1724917834567)
	got := OrderNumber(now)

	assert.Equal(t, "SH17834567", got)
	assert.Len(t, got, 10)
}
