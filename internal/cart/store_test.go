package cart

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shophub-api/internal/models"
	"shophub-api/pkg/storage"
)

func product(id, stock int) models.Product {
	return models.Product{ID: id, Title: "widget", Price: 9.99, Stock: stock, Category: "tools"}
}

func TestStore_AddWithinStock(t *testing.T) {
	s := NewStore(storage.NewMemoryKV())

	assert.True(t, s.Add(product(1, 5), 2))
	assert.True(t, s.Add(product(1, 5), 3))
	assert.Equal(t, 5, s.QuantityOf(1))

	lines := s.Lines()
	require.Len(t, lines, 1, "same product merges into one line")
}

func TestStore_AddExceedingStockDeclined(t *testing.T) {
	s := NewStore(storage.NewMemoryKV())

	require.True(t, s.Add(product(1, 5), 4))
	before := s.Lines()

	assert.False(t, s.Add(product(1, 5), 2), "cumulative 6 > stock 5 must be declined")
	assert.Equal(t, before, s.Lines(), "declined add leaves the cart unchanged")
}

func TestStore_AddNonPositiveQuantityDeclined(t *testing.T) {
	s := NewStore(storage.NewMemoryKV())

	assert.False(t, s.Add(product(1, 5), 0))
	assert.False(t, s.Add(product(1, 5), -1))
	assert.Empty(t, s.Lines())
}

// Scenario from the storefront: empty cart, add A (stock 5) twice by 2,
// one line with quantity 4, then setQuantity(A, 0) empties the cart.
func TestStore_MergeThenZeroScenario(t *testing.T) {
	s := NewStore(storage.NewMemoryKV())
	a := product(1, 5)

	require.True(t, s.Add(a, 2))
	require.True(t, s.Add(a, 2))

	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 4, lines[0].Quantity)

	s.SetQuantity(1, 0)
	assert.Empty(t, s.Lines())
	assert.Equal(t, 0, s.ItemCount())
}

func TestStore_SetQuantityIgnoresStockCeiling(t *testing.T) {
	s := NewStore(storage.NewMemoryKV())
	require.True(t, s.Add(product(1, 5), 1))

	// The add-time ceiling is deliberately not re-checked on SetQuantity.
	s.SetQuantity(1, 50)
	assert.Equal(t, 50, s.QuantityOf(1))
}

func TestStore_RemoveAlwaysSucceeds(t *testing.T) {
	s := NewStore(storage.NewMemoryKV())
	require.True(t, s.Add(product(1, 5), 1))

	s.Remove(1)
	assert.Empty(t, s.Lines())

	s.Remove(99) // absent id is a no-op
	assert.Empty(t, s.Lines())
}

func TestStore_DerivedQueries(t *testing.T) {
	s := NewStore(storage.NewMemoryKV())
	require.True(t, s.Add(product(1, 10), 3))
	require.True(t, s.Add(product(2, 10), 4))

	assert.Equal(t, 7, s.ItemCount())
	assert.True(t, s.Contains(1))
	assert.False(t, s.Contains(3))
	assert.Equal(t, 4, s.QuantityOf(2))
	assert.Equal(t, 0, s.QuantityOf(3))
}

func TestStore_PersistRestoreRoundTrip(t *testing.T) {
	kv := storage.NewMemoryKV()

	s := NewStore(kv)
	require.True(t, s.Add(product(2, 10), 1))
	require.True(t, s.Add(product(1, 10), 3))
	s.SetQuantity(2, 2)
	want := s.Lines()

	restored := NewStore(kv)
	assert.Equal(t, want, restored.Lines(), "restore must yield the identical line sequence")
}

func TestStore_CorruptSnapshotStartsEmpty(t *testing.T) {
	kv := storage.NewMemoryKV()
	require.NoError(t, kv.Set(SnapshotKey, "{not json"))

	s := NewStore(kv)
	assert.Empty(t, s.Lines())
}

func TestStore_RestoreLoadsVerbatimWithoutValidation(t *testing.T) {
	s := NewStore(storage.NewMemoryKV())

	// Stale snapshot lines bypass validation entirely.
	stale := []models.CartLine{{ProductID: 1, Title: "old", Stock: 2, Quantity: 9}}
	s.Restore(stale)
	assert.Equal(t, stale, s.Lines())
}

func TestStore_ClearPersistsEmptyList(t *testing.T) {
	kv := storage.NewMemoryKV()
	s := NewStore(kv)
	require.True(t, s.Add(product(1, 5), 1))

	s.Clear()

	raw, err := kv.Get(SnapshotKey)
	require.NoError(t, err)
	var lines []models.CartLine
	require.NoError(t, json.Unmarshal([]byte(raw), &lines))
	assert.Empty(t, lines)
}

func TestStore_WorksWithoutDurableStorage(t *testing.T) {
	s := NewStore(nil)
	assert.True(t, s.Add(product(1, 5), 2))
	assert.Equal(t, 2, s.ItemCount())
}
