package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"shophub-api/internal/cart"
	"shophub-api/internal/catalog"
	"shophub-api/internal/checkout"
	"shophub-api/internal/models"
	"shophub-api/pkg/cache"
	"shophub-api/pkg/pricing"
	"shophub-api/pkg/storage"
	"shophub-api/pkg/utils"
)

var (
	rateLimiters = make(map[string]*rate.Limiter)
	rateMutex    = &sync.RWMutex{}
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8085"
	}

	// Redis backs the durable tier when reachable; otherwise everything
	// still works against process memory.
	redisKV := storage.NewRedisKV()
	var durable storage.KV = redisKV
	if !redisKV.IsAvailable() {
		log.Println("Durable storage unavailable, using in-memory store")
		durable = storage.NewMemoryKV()
	}

	fetchClient := cache.NewClient(durable)
	catalogStore := catalog.NewStore(fetchClient, os.Getenv("CATALOG_API_URL"))
	cartStore := cart.NewStore(durable)
	engine := pricing.NewEngine()

	checkoutDelay := checkout.DefaultProcessingDelay
	if ms := os.Getenv("CHECKOUT_DELAY_MS"); ms != "" {
		if n, err := strconv.Atoi(ms); err == nil && n >= 0 {
			checkoutDelay = time.Duration(n) * time.Millisecond
		}
	}
	checkoutService := checkout.NewService(cartStore, engine, checkoutDelay)

	r := gin.Default()

	// Add CORS middleware
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// Add request ID middleware
	r.Use(func(c *gin.Context) {
		requestID := fmt.Sprintf("%d", time.Now().UnixNano())
		c.Header("X-Request-ID", requestID)
		start := time.Now()
		c.Next()
		log.Printf("[%s] %s %s - %v - %d",
			requestID, c.Request.Method, c.Request.URL.Path,
			time.Since(start), c.Writer.Status())
	})

	r.Use(rateLimitMiddleware())

	// Health check with cache status
	r.GET("/health", func(c *gin.Context) {
		health := gin.H{
			"status":  "healthy",
			"service": "shophub-api",
			"version": "1.0.0",
		}

		if redisKV.IsAvailable() {
			health["cache"] = "redis connected"
		} else {
			health["cache"] = "memory only"
		}

		c.JSON(http.StatusOK, health)
	})

	// Cache stats endpoint
	r.GET("/cache/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"memory_entries": fetchClient.MemoryLen(),
			"durable":        redisKV.GetStats(),
		})
	})

	// Cache debug endpoint
	r.GET("/cache/debug", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"memory_entries": fetchClient.MemoryLen(),
			"durable_keys":   redisKV.KeysWithPrefix(cache.KeyPrefix),
			"debug_info": gin.H{
				"redis_available": redisKV.IsAvailable(),
				"timestamp":       time.Now().Format(time.RFC3339),
			},
		})
	})

	// Cache flush endpoint (for testing)
	r.DELETE("/cache/flush", func(c *gin.Context) {
		fetchClient.FlushMemory()
		if redisKV.IsAvailable() {
			if err := redisKV.Flush(); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{
					"error":   "failed to flush cache",
					"details": err.Error(),
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"message":   "cache flushed successfully",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// Product listing with optional category filter, local search and sort
	r.GET("/products", func(c *gin.Context) {
		if err := catalogStore.LoadProducts(c.Request.Context()); err != nil {
			c.JSON(http.StatusBadGateway, models.ErrorResponse{
				Error:   "catalog_unavailable",
				Code:    http.StatusBadGateway,
				Message: err.Error(),
			})
			return
		}

		if category := c.Query("category"); category != "" {
			if err := catalogStore.FilterByCategory(c.Request.Context(), category); err != nil {
				c.JSON(http.StatusBadGateway, models.ErrorResponse{
					Error:   "category_load_failed",
					Code:    http.StatusBadGateway,
					Message: err.Error(),
				})
				return
			}
		}
		if q := c.Query("q"); q != "" {
			catalogStore.Search(q)
		}
		if sortBy := c.Query("sort"); sortBy != "" {
			catalogStore.Sort(sortBy)
		}

		products := catalogStore.Filtered()
		c.JSON(http.StatusOK, gin.H{
			"products": products,
			"total":    len(products),
			"category": catalogStore.SelectedCategory(),
			"query":    catalogStore.SearchQuery(),
		})
	})

	// Single product by id
	r.GET("/products/:id", func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "invalid_product_id",
				Code:    http.StatusBadRequest,
				Message: "product id must be numeric",
			})
			return
		}

		product, err := catalogStore.LoadProduct(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusBadGateway, models.ErrorResponse{
				Error:   "product_load_failed",
				Code:    http.StatusBadGateway,
				Message: err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, product)
	})

	// Category list; load failures are absorbed by the built-in fallback
	r.GET("/categories", func(c *gin.Context) {
		catalogStore.LoadCategories(c.Request.Context())
		categories := catalogStore.Categories()

		labeled := make([]gin.H, 0, len(categories))
		for _, category := range categories {
			labeled = append(labeled, gin.H{
				"slug": category,
				"name": utils.CategoryDisplayName(category),
			})
		}
		c.JSON(http.StatusOK, gin.H{"categories": labeled})
	})

	// Remote search (last request wins)
	r.GET("/search", func(c *gin.Context) {
		q := c.Query("q")
		if q == "" {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "missing_query",
				Code:    http.StatusBadRequest,
				Message: "search query cannot be empty",
			})
			return
		}

		if err := catalogStore.SearchRemote(c.Request.Context(), q); err != nil {
			c.JSON(http.StatusBadGateway, models.ErrorResponse{
				Error:   "search_failed",
				Code:    http.StatusBadGateway,
				Message: err.Error(),
			})
			return
		}

		results := catalogStore.Filtered()
		c.JSON(http.StatusOK, gin.H{
			"query":    q,
			"products": results,
			"total":    len(results),
		})
	})

	// Cart contents
	r.GET("/cart", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"items":     cartStore.Lines(),
			"itemCount": cartStore.ItemCount(),
		})
	})

	// Add a product to the cart
	r.POST("/cart/items", func(c *gin.Context) {
		var req struct {
			ProductID int `json:"productId"`
			Quantity  int `json:"quantity"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "invalid_request",
				Code:    http.StatusBadRequest,
				Message: err.Error(),
			})
			return
		}
		if req.Quantity == 0 {
			req.Quantity = 1
		}

		product, err := catalogStore.LoadProduct(c.Request.Context(), req.ProductID)
		if err != nil {
			c.JSON(http.StatusBadGateway, models.ErrorResponse{
				Error:   "product_load_failed",
				Code:    http.StatusBadGateway,
				Message: err.Error(),
			})
			return
		}

		if !cartStore.Add(product, req.Quantity) {
			available := product.Stock - cartStore.QuantityOf(product.ID)
			c.JSON(http.StatusConflict, models.ErrorResponse{
				Error:   "stock_exceeded",
				Code:    http.StatusConflict,
				Message: fmt.Sprintf("Cannot add %d items. Only %d available.", req.Quantity, available),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"items":     cartStore.Lines(),
			"itemCount": cartStore.ItemCount(),
		})
	})

	// Set a line's quantity (zero removes it)
	r.PUT("/cart/items/:id", func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "invalid_product_id",
				Code:    http.StatusBadRequest,
				Message: "product id must be numeric",
			})
			return
		}
		var req struct {
			Quantity int `json:"quantity"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "invalid_request",
				Code:    http.StatusBadRequest,
				Message: err.Error(),
			})
			return
		}

		cartStore.SetQuantity(id, req.Quantity)
		c.JSON(http.StatusOK, gin.H{
			"items":     cartStore.Lines(),
			"itemCount": cartStore.ItemCount(),
		})
	})

	// Remove a line
	r.DELETE("/cart/items/:id", func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "invalid_product_id",
				Code:    http.StatusBadRequest,
				Message: "product id must be numeric",
			})
			return
		}
		cartStore.Remove(id)
		c.JSON(http.StatusOK, gin.H{
			"items":     cartStore.Lines(),
			"itemCount": cartStore.ItemCount(),
		})
	})

	// Empty the cart
	r.DELETE("/cart", func(c *gin.Context) {
		cartStore.Clear()
		c.JSON(http.StatusOK, gin.H{"items": cartStore.Lines(), "itemCount": 0})
	})

	// Derived totals for the current cart
	r.GET("/cart/totals", func(c *gin.Context) {
		totals := engine.CartTotals(cartStore.Lines()).Rounded()
		c.JSON(http.StatusOK, gin.H{
			"totals":    totals,
			"display":   utils.FormatPrice(totals.GrandTotal),
			"itemCount": cartStore.ItemCount(),
		})
	})

	// Checkout: validate address, place the order, clear the cart
	r.POST("/checkout", func(c *gin.Context) {
		var addr checkout.Address
		if err := c.ShouldBindJSON(&addr); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "invalid_request",
				Code:    http.StatusBadRequest,
				Message: err.Error(),
			})
			return
		}

		order, err := checkoutService.PlaceOrder(c.Request.Context(), addr)
		if err != nil {
			var vErr *checkout.ValidationError
			if errors.As(err, &vErr) {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":  "validation_failed",
					"fields": vErr.Fields,
				})
				return
			}
			if errors.Is(err, checkout.ErrEmptyCart) {
				c.JSON(http.StatusBadRequest, models.ErrorResponse{
					Error:   "empty_cart",
					Code:    http.StatusBadRequest,
					Message: "cannot checkout an empty cart",
				})
				return
			}
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "checkout_failed",
				Code:    http.StatusInternalServerError,
				Message: err.Error(),
			})
			return
		}

		c.JSON(http.StatusCreated, order)
	})

	// API info endpoint
	r.GET("/api/info", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":        "ShopHub API",
			"version":     "1.0.0",
			"description": "Storefront data layer: catalog, cart, pricing and checkout",
			"features":    []string{"Two-tier fetch caching", "Persistent cart", "Pricing with GST and shipping", "Category filtering", "Search", "Sorting", "Checkout"},
			"endpoints": map[string]string{
				"GET /products":     "List products with filtering, search and sorting",
				"GET /products/:id": "Single product",
				"GET /categories":   "Category list",
				"GET /search":       "Remote product search",
				"GET /cart":         "Cart contents",
				"GET /cart/totals":  "Derived cart totals",
				"POST /checkout":    "Place an order",
				"GET /health":       "Health check",
				"GET /cache/stats":  "Cache statistics",
			},
		})
	})

	log.Printf("Starting shophub server on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func getRateLimiter(ip string) *rate.Limiter {
	rateMutex.RLock()
	limiter, exists := rateLimiters[ip]
	rateMutex.RUnlock()

	if !exists {
		rateMutex.Lock()
		limiter = rate.NewLimiter(rate.Limit(10), 20) // 10 req/sec, burst 20
		rateLimiters[ip] = limiter
		rateMutex.Unlock()
	}

	return limiter
}

func rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		limiter := getRateLimiter(ip)

		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate_limit_exceeded",
				"message":     "Too many requests from your IP",
				"retry_after": "1 second",
				"ip":          ip,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
