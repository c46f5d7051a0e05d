package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"shophub-api/internal/models"
	"shophub-api/pkg/cache"
)

const DefaultAPIBaseURL = "https://dummyjson.com"

// Per-resolver cache lifetimes. The category list changes rarely upstream,
// so it outlives everything else.
const (
	listTTL     = 30 * time.Minute
	searchTTL   = 15 * time.Minute
	categoryTTL = 24 * time.Hour
)

const (
	listLimit     = 50
	searchLimit   = 30
	categoryLimit = 30
)

// listFields keeps the full-list fetch lean; detail pages re-fetch by id.
const listFields = "id,title,price,thumbnail,category,rating,stock,discountPercentage,brand"

// fallbackCategories stands in when the category resolver fails; category
// load is the one fetch whose failure is fully absorbed.
var fallbackCategories = []string{
	"beauty", "fragrances", "furniture", "groceries", "home-decoration",
	"kitchen-accessories", "laptops", "mens-shirts", "mens-shoes",
	"mens-watches", "mobile-accessories", "motorcycle", "skin-care",
	"smartphones", "sports-accessories", "sunglasses", "tablets",
	"tops", "vehicle", "womens-bags", "womens-dresses",
	"womens-jewellery", "womens-shoes", "womens-watches",
}

// Store tracks the active product list and its derived filtered/sorted view.
// It obtains data exclusively through the caching fetch client and is the
// sole writer of the filtered subset.
type Store struct {
	client  *cache.Client
	baseURL string

	mu               sync.Mutex
	products         []models.Product
	filtered         []models.Product
	categories       []string
	current          *models.Product
	selectedCategory string
	searchQuery      string
	loading          bool
	lastError        string
	searchGen        uint64
}

func NewStore(client *cache.Client, baseURL string) *Store {
	if baseURL == "" {
		baseURL = DefaultAPIBaseURL
	}
	return &Store{
		client:           client,
		baseURL:          strings.TrimRight(baseURL, "/"),
		selectedCategory: "all",
	}
}

// LoadProducts fetches the full product list and resets the derived view.
func (s *Store) LoadProducts(ctx context.Context) error {
	s.setLoading(true)

	u := fmt.Sprintf("%s/products?limit=%d&select=%s", s.baseURL, listLimit, listFields)
	data, err := s.client.Resolve(ctx, "products", u, listTTL)
	if err != nil {
		s.setError(err)
		return err
	}

	var list models.ProductList
	if err := json.Unmarshal(data, &list); err != nil {
		err = fmt.Errorf("failed to decode product list: %w", err)
		s.setError(err)
		return err
	}

	s.mu.Lock()
	s.products = list.Products
	s.filtered = append([]models.Product(nil), list.Products...)
	s.selectedCategory = "all"
	s.searchQuery = ""
	s.loading = false
	s.lastError = ""
	s.mu.Unlock()
	return nil
}

// LoadCategories fetches the category list, falling back to the built-in
// list on any failure. It never returns an error.
func (s *Store) LoadCategories(ctx context.Context) {
	u := s.baseURL + "/products/category-list"
	data, err := s.client.Resolve(ctx, "categories", u, categoryTTL)
	if err != nil {
		log.Printf("[Catalog] Category load failed, using fallback list: %v", err)
		s.setCategories(fallbackCategories)
		return
	}

	var categories []string
	if err := json.Unmarshal(data, &categories); err != nil {
		log.Printf("[Catalog] Category decode failed, using fallback list: %v", err)
		s.setCategories(fallbackCategories)
		return
	}

	valid := make([]string, 0, len(categories))
	for _, c := range categories {
		if strings.TrimSpace(c) != "" {
			valid = append(valid, c)
		}
	}
	if len(valid) == 0 {
		valid = fallbackCategories
	}
	s.setCategories(valid)
}

// LoadProduct fetches a single product by id and records it as the current
// product.
func (s *Store) LoadProduct(ctx context.Context, id int) (models.Product, error) {
	s.setLoading(true)

	u := fmt.Sprintf("%s/products/%d", s.baseURL, id)
	data, err := s.client.Resolve(ctx, fmt.Sprintf("product_%d", id), u, listTTL)
	if err != nil {
		s.setError(err)
		return models.Product{}, err
	}

	var p models.Product
	if err := json.Unmarshal(data, &p); err != nil {
		err = fmt.Errorf("failed to decode product %d: %w", id, err)
		s.setError(err)
		return models.Product{}, err
	}

	s.mu.Lock()
	s.current = &p
	s.loading = false
	s.lastError = ""
	s.mu.Unlock()
	return p, nil
}

// FilterByCategory replaces the filtered view: "all" (or empty) restores the
// full list locally, any other category fetches the upstream category
// listing.
func (s *Store) FilterByCategory(ctx context.Context, category string) error {
	s.mu.Lock()
	s.selectedCategory = category
	if category == "" || category == "all" {
		s.selectedCategory = "all"
		s.filtered = append([]models.Product(nil), s.products...)
		s.mu.Unlock()
		return nil
	}
	s.loading = true
	s.mu.Unlock()

	u := fmt.Sprintf("%s/products/category/%s?limit=%d", s.baseURL, url.PathEscape(category), categoryLimit)
	data, err := s.client.Resolve(ctx, "category_"+category, u, listTTL)
	if err != nil {
		s.setError(err)
		return err
	}

	var list models.ProductList
	if err := json.Unmarshal(data, &list); err != nil {
		err = fmt.Errorf("failed to decode category %s: %w", category, err)
		s.setError(err)
		return err
	}

	s.mu.Lock()
	s.filtered = list.Products
	s.loading = false
	s.lastError = ""
	s.mu.Unlock()
	return nil
}

// Search recomputes the filtered view locally: case-insensitive substring
// match on titles ANDed with the active category filter. No network.
func (s *Store) Search(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.searchQuery = query
	filtered := make([]models.Product, 0, len(s.products))
	lower := strings.ToLower(strings.TrimSpace(query))

	for _, p := range s.products {
		if lower != "" && !strings.Contains(strings.ToLower(p.Title), lower) {
			continue
		}
		if s.selectedCategory != "" && s.selectedCategory != "all" && p.Category != s.selectedCategory {
			continue
		}
		filtered = append(filtered, p)
	}
	s.filtered = filtered
}

// SearchRemote queries the upstream search endpoint. A monotonic generation
// counter makes the last issued search win: results arriving for a
// superseded query are dropped instead of overwriting a newer one.
func (s *Store) SearchRemote(ctx context.Context, query string) error {
	s.mu.Lock()
	s.searchGen++
	gen := s.searchGen
	s.searchQuery = query
	s.loading = true
	s.mu.Unlock()

	u := fmt.Sprintf("%s/products/search?q=%s&limit=%d", s.baseURL, url.QueryEscape(query), searchLimit)
	data, err := s.client.Resolve(ctx, "search_"+query, u, searchTTL)
	if err != nil {
		s.mu.Lock()
		if gen == s.searchGen {
			s.lastError = err.Error()
			s.loading = false
		}
		s.mu.Unlock()
		return err
	}

	var list models.ProductList
	if err := json.Unmarshal(data, &list); err != nil {
		err = fmt.Errorf("failed to decode search results: %w", err)
		s.mu.Lock()
		if gen == s.searchGen {
			s.lastError = err.Error()
			s.loading = false
		}
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.searchGen {
		log.Printf("[Catalog] Dropping stale search results for %q", query)
		return nil
	}
	s.filtered = list.Products
	s.loading = false
	s.lastError = ""
	return nil
}

// Sort reorders the current filtered view in place. Unknown criteria leave
// the order unchanged.
func (s *Store) Sort(criterion string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch criterion {
	case "price-low":
		sort.SliceStable(s.filtered, func(i, j int) bool {
			return s.filtered[i].Price < s.filtered[j].Price
		})
	case "price-high":
		sort.SliceStable(s.filtered, func(i, j int) bool {
			return s.filtered[i].Price > s.filtered[j].Price
		})
	case "rating":
		sort.SliceStable(s.filtered, func(i, j int) bool {
			return s.filtered[i].Rating > s.filtered[j].Rating
		})
	case "name":
		c := collate.New(language.English, collate.IgnoreCase)
		sort.SliceStable(s.filtered, func(i, j int) bool {
			return c.CompareString(s.filtered[i].Title, s.filtered[j].Title) < 0
		})
	case "discount":
		sort.SliceStable(s.filtered, func(i, j int) bool {
			return s.filtered[i].DiscountPercentage > s.filtered[j].DiscountPercentage
		})
	}
}

func (s *Store) Products() []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Product(nil), s.products...)
}

func (s *Store) Filtered() []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Product(nil), s.filtered...)
}

func (s *Store) Categories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.categories...)
}

func (s *Store) SelectedCategory() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedCategory
}

func (s *Store) SearchQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searchQuery
}

func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// LastError reports the retained failure message for display; empty when
// the last operation succeeded.
func (s *Store) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *Store) setError(err error) {
	s.mu.Lock()
	s.lastError = err.Error()
	s.loading = false
	s.mu.Unlock()
}

func (s *Store) setCategories(categories []string) {
	s.mu.Lock()
	s.categories = append([]string(nil), categories...)
	s.mu.Unlock()
}
