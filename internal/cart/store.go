package cart

import (
	"encoding/json"
	"errors"
	"log"
	"sync"

	"shophub-api/internal/models"
	"shophub-api/pkg/storage"
)

// SnapshotKey is the fixed durable-storage key holding the serialized cart.
// It lives outside the fetch-cache namespace on purpose.
const SnapshotKey = "shophub_cart"

// Store owns the cart line sequence. Every successful mutation runs the
// persistence effect (full serialization to the durable KV); mutations are
// applied strictly in call order under the mutex.
type Store struct {
	mu      sync.Mutex
	lines   []models.CartLine
	durable storage.KV
}

// NewStore builds a Store and attempts exactly one restore from the durable
// snapshot. A missing, unreadable, or corrupt snapshot starts the cart empty.
func NewStore(durable storage.KV) *Store {
	s := &Store{durable: durable}

	if durable == nil {
		return s
	}
	raw, err := durable.Get(SnapshotKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("[Cart] Failed to read saved cart: %v", err)
		}
		return s
	}
	var lines []models.CartLine
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		log.Printf("[Cart] Failed to parse saved cart, starting empty: %v", err)
		return s
	}
	s.lines = reduce(s.lines, Action{Type: ActionLoad, Lines: lines})
	return s
}

// Add merges quantity into an existing line or appends a snapshot line.
// It returns false, leaving the cart unchanged, when quantity is not
// positive or when the cumulative quantity would exceed the product's stock.
func (s *Store) Add(p models.Product, quantity int) bool {
	if quantity <= 0 {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := 0
	for _, line := range s.lines {
		if line.ProductID == p.ID {
			current = line.Quantity
			break
		}
	}
	if current+quantity > p.Stock {
		log.Printf("[Cart] Declined add of %d x product %d: only %d available", quantity, p.ID, p.Stock-current)
		return false
	}

	s.lines = reduce(s.lines, Action{Type: ActionAdd, Line: models.LineFromProduct(p, quantity)})
	s.persist()
	return true
}

// Remove deletes the line for productID; removing an absent line is a no-op
// that still counts as a successful mutation.
func (s *Store) Remove(productID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = reduce(s.lines, Action{Type: ActionRemove, ProductID: productID})
	s.persist()
}

// SetQuantity sets the line's quantity verbatim; zero or negative removes
// the line. The add-time stock ceiling is not re-checked here.
func (s *Store) SetQuantity(productID, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = reduce(s.lines, Action{Type: ActionSetQuantity, ProductID: productID, Quantity: quantity})
	s.persist()
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = reduce(s.lines, Action{Type: ActionClear})
	s.persist()
}

// Restore replaces the cart verbatim without validation or persistence.
func (s *Store) Restore(lines []models.CartLine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = reduce(s.lines, Action{Type: ActionLoad, Lines: lines})
}

// Lines returns a copy of the ordered line sequence.
func (s *Store) Lines() []models.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

// ItemCount sums quantities across all lines.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, line := range s.lines {
		total += line.Quantity
	}
	return total
}

func (s *Store) Contains(productID int) bool {
	return s.QuantityOf(productID) > 0
}

func (s *Store) QuantityOf(productID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, line := range s.lines {
		if line.ProductID == productID {
			return line.Quantity
		}
	}
	return 0
}

// persist serializes the full line list to the durable snapshot. Failures
// are logged and swallowed; the in-memory cart stays authoritative.
// Callers must hold the mutex.
func (s *Store) persist() {
	if s.durable == nil {
		return
	}
	raw, err := json.Marshal(s.lines)
	if err != nil {
		log.Printf("[Cart] Failed to serialize cart: %v", err)
		return
	}
	if err := s.durable.Set(SnapshotKey, string(raw)); err != nil {
		log.Printf("[Cart] Failed to save cart: %v", err)
	}
}
