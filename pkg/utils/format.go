package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatPrice renders an INR amount for display with Indian digit grouping
// and no paise, e.g. 1234567 -> "₹12,34,567". Rounding to whole rupees
// happens here, once.
func FormatPrice(amount decimal.Decimal) string {
	rounded := amount.Round(0)
	negative := rounded.IsNegative()
	digits := rounded.Abs().String()

	grouped := groupIndian(digits)
	if negative {
		return "-₹" + grouped
	}
	return "₹" + grouped
}

// groupIndian applies the lakh/crore grouping: the last three digits, then
// pairs.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head := digits[:len(digits)-3]
	tail := digits[len(digits)-3:]

	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	parts = append([]string{head}, parts...)
	return strings.Join(parts, ",") + "," + tail
}

// FormatCategoryName turns an API category tag into a readable label,
// e.g. "mens-shoes" -> "Men's Shoes".
func FormatCategoryName(category string) string {
	if strings.TrimSpace(category) == "" {
		return "Uncategorized"
	}

	words := strings.Split(category, "-")
	for i, word := range words {
		switch word {
		case "mens":
			words[i] = "Men's"
		case "womens":
			words[i] = "Women's"
		case "":
		default:
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}

// categoryNames holds the curated display names; anything missing falls back
// to FormatCategoryName.
var categoryNames = map[string]string{
	"beauty":             "Beauty",
	"fragrances":         "Fragrances",
	"furniture":          "Furniture",
	"groceries":          "Groceries",
	"home-decoration":    "Home Decoration",
	"kitchen-accessories": "Kitchen Accessories",
	"laptops":            "Laptops",
	"mens-shirts":        "Men's Shirts",
	"mens-shoes":         "Men's Shoes",
	"mens-watches":       "Men's Watches",
	"mobile-accessories": "Mobile Accessories",
	"motorcycle":         "Motorcycle",
	"skin-care":          "Skin Care",
	"smartphones":        "Smartphones",
	"sports-accessories": "Sports Accessories",
	"sunglasses":         "Sunglasses",
	"tablets":            "Tablets",
	"tops":               "Tops",
	"vehicle":            "Vehicle",
	"womens-bags":        "Women's Bags",
	"womens-dresses":     "Women's Dresses",
	"womens-jewellery":   "Women's Jewellery",
	"womens-shoes":       "Women's Shoes",
	"womens-watches":     "Women's Watches",
}

func CategoryDisplayName(category string) string {
	if name, ok := categoryNames[category]; ok {
		return name
	}
	return FormatCategoryName(category)
}

// StockStatus buckets a stock count for display.
func StockStatus(stock int) string {
	switch {
	case stock <= 0:
		return "Out of Stock"
	case stock <= 10:
		return "Low Stock"
	default:
		return "In Stock"
	}
}
