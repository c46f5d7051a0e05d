package models

// Product mirrors the upstream catalog API's product shape. Immutable once
// fetched; a re-fetch replaces the whole value.
type Product struct {
	ID                 int      `json:"id"`
	Title              string   `json:"title"`
	Price              float64  `json:"price"` // base price in source currency (USD)
	DiscountPercentage float64  `json:"discountPercentage,omitempty"`
	Stock              int      `json:"stock"`
	Category           string   `json:"category"`
	Rating             float64  `json:"rating,omitempty"`
	Brand              string   `json:"brand,omitempty"`
	Thumbnail          string   `json:"thumbnail,omitempty"`
	Images             []string `json:"images,omitempty"`
	Description        string   `json:"description,omitempty"`
}

type ProductList struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
	Skip     int       `json:"skip"`
	Limit    int       `json:"limit"`
}

// CartLine snapshots the product fields needed for display and pricing at
// add-time, plus the chosen quantity. Quantity is always >= 1 while stored.
type CartLine struct {
	ProductID          int     `json:"id"`
	Title              string  `json:"title"`
	Price              float64 `json:"price"`
	DiscountPercentage float64 `json:"discountPercentage,omitempty"`
	Stock              int     `json:"stock"`
	Category           string  `json:"category,omitempty"`
	Brand              string  `json:"brand,omitempty"`
	Thumbnail          string  `json:"thumbnail,omitempty"`
	Quantity           int     `json:"quantity"`
}

// LineFromProduct captures the display snapshot for a new cart line.
func LineFromProduct(p Product, quantity int) CartLine {
	return CartLine{
		ProductID:          p.ID,
		Title:              p.Title,
		Price:              p.Price,
		DiscountPercentage: p.DiscountPercentage,
		Stock:              p.Stock,
		Category:           p.Category,
		Brand:              p.Brand,
		Thumbnail:          p.Thumbnail,
		Quantity:           quantity,
	}
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
