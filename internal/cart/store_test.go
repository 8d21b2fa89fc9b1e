package cart

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/artisanmarket/cart-backend/pkg/errors"
)

func product(id, price string) Product {
	return Product{
		ProductID:  id,
		Title:      "Title " + id,
		VendorName: "Vendor " + id,
		UnitPrice:  decimal.RequireFromString(price),
	}
}

func requireMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, decimal.RequireFromString(want).Equal(got), "expected %s, got %s", want, got.String())
}

func TestStoreScenarios(t *testing.T) {
	store := NewStore()

	require.NoError(t, store.Add(product("p1", "10.00"), 2))
	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].ProductID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 2, store.Totals().TotalItems)
	requireMoney(t, "20.00", store.Totals().TotalPrice)

	require.NoError(t, store.Add(product("p1", "10.00"), 1))
	items = store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
	requireMoney(t, "30.00", store.Totals().TotalPrice)

	store.UpdateQuantity("p1", 0)
	assert.Empty(t, store.Items())
	assert.Equal(t, 0, store.Totals().TotalItems)
	requireMoney(t, "0", store.Totals().TotalPrice)

	require.NoError(t, store.Add(product("p2", "5.50"), 1))
	require.NoError(t, store.Add(product("p3", "4.50"), 1))
	requireMoney(t, "10.00", store.Totals().TotalPrice)
	store.Clear()
	assert.Empty(t, store.Items())

	store.Remove("nonexistent")
	assert.Empty(t, store.Items())
}

func TestStoreAddKeepsOneEntryPerProduct(t *testing.T) {
	store := NewStore()
	for _, id := range []string{"a", "b", "a", "c", "b", "a"} {
		require.NoError(t, store.AddOne(product(id, "1.00")))
	}

	items := store.Items()
	require.Len(t, items, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{items[0].ProductID, items[1].ProductID, items[2].ProductID})
	assert.Equal(t, []int{3, 2, 1}, []int{items[0].Quantity, items[1].Quantity, items[2].Quantity})
}

func TestStoreAddKeepsFirstSnapshot(t *testing.T) {
	store := NewStore()
	image := "https://cdn.artisanmarket.test/p1.jpg"
	first := product("p1", "10.00")
	first.ImageURL = &image
	require.NoError(t, store.Add(first, 1))

	repriced := product("p1", "12.00")
	repriced.Title = "Renamed"
	require.NoError(t, store.Add(repriced, 2))

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Title p1", items[0].Title)
	assert.Equal(t, 3, items[0].Quantity)
	requireMoney(t, "10.00", items[0].UnitPrice)
	require.NotNil(t, items[0].ImageURL)
	assert.Equal(t, image, *items[0].ImageURL)

	image = "mutated"
	assert.Equal(t, "https://cdn.artisanmarket.test/p1.jpg", *store.Items()[0].ImageURL)
}

func TestStoreAddRejectsNonPositiveQuantity(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Add(product("p1", "3.00"), 1))

	for _, qty := range []int{0, -1, -10} {
		err := store.Add(product("p1", "3.00"), qty)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidQuantity))
		assert.Equal(t, pkgerrors.CodeInvalidQuantity, pkgerrors.CodeOf(err))
	}

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
}

func TestStoreAddEnforcesLineQuantityCeiling(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Add(product("p1", "2.00"), MaxLineQuantity-1))
	require.NoError(t, store.Add(product("p1", "2.00"), 1))

	for _, qty := range []int{1, MaxLineQuantity, math.MaxInt} {
		err := store.Add(product("p1", "2.00"), qty)
		require.Error(t, err, "quantity %d", qty)
		assert.True(t, errors.Is(err, ErrInvalidQuantity))
		assert.Equal(t, pkgerrors.CodeInvalidQuantity, pkgerrors.CodeOf(err))
	}

	err := store.Add(product("p2", "2.00"), MaxLineQuantity+1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidQuantity))

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, MaxLineQuantity, items[0].Quantity)
	assert.Equal(t, MaxLineQuantity, store.Totals().TotalItems)

	restored := NewStore()
	require.NoError(t, restored.Restore(store.Snapshot()))
}

func TestStoreUpdateQuantityClampsToCeiling(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Add(product("p1", "1.00"), 1))

	store.UpdateQuantity("p1", math.MaxInt)
	assert.Equal(t, MaxLineQuantity, store.Items()[0].Quantity)
}

func TestStoreAddRejectsUnstorablePrices(t *testing.T) {
	store := NewStore()
	for _, price := range []string{"0.005", "19.999", "10000000000"} {
		err := store.Add(product("p1", price), 1)
		require.Error(t, err, price)
		assert.True(t, errors.Is(err, ErrInvalidProduct), price)
	}
	assert.Empty(t, store.Items())

	require.NoError(t, store.Add(product("p1", "9999999999.99"), 1))
}

func TestStoreAddValidatesProduct(t *testing.T) {
	store := NewStore()

	err := store.Add(product(" ", "1.00"), 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidProduct))
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	err = store.Add(product("p1", "-0.01"), 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidProduct))

	require.NoError(t, store.Add(product("free", "0"), 1))
	assert.Len(t, store.Items(), 1)
}

func TestStoreTotalsAreExact(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Add(product("a", "0.10"), 3))
	require.NoError(t, store.Add(product("b", "0.20"), 1))
	require.NoError(t, store.Add(product("c", "19.99"), 7))

	totals := store.Totals()
	assert.Equal(t, 11, totals.TotalItems)
	requireMoney(t, "140.43", totals.TotalPrice)

	var sum decimal.Decimal
	qty := 0
	for _, item := range store.Items() {
		sum = sum.Add(item.Subtotal())
		qty += item.Quantity
	}
	assert.True(t, sum.Equal(totals.TotalPrice))
	assert.Equal(t, qty, totals.TotalItems)
}

func TestStoreRemoveIsIdempotent(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Add(product("a", "1.00"), 1))
	require.NoError(t, store.Add(product("b", "2.00"), 1))

	store.Remove("a")
	after := store.Items()
	store.Remove("a")
	store.Remove("never-added")

	assert.Equal(t, after, store.Items())
	require.Len(t, after, 1)
	assert.Equal(t, "b", after[0].ProductID)
}

func TestStoreUpdateQuantity(t *testing.T) {
	for _, qty := range []int{0, -1} {
		store := NewStore()
		require.NoError(t, store.Add(product("a", "1.00"), 4))
		require.NoError(t, store.Add(product("b", "1.00"), 1))

		reference := NewStore()
		require.NoError(t, reference.Restore(store.Snapshot()))
		reference.Remove("a")

		store.UpdateQuantity("a", qty)
		assert.Equal(t, reference.Items(), store.Items(), "quantity %d", qty)
	}

	store := NewStore()
	require.NoError(t, store.Add(product("a", "2.50"), 4))
	store.UpdateQuantity("a", 2)
	assert.Equal(t, 2, store.Items()[0].Quantity)
	requireMoney(t, "5.00", store.Totals().TotalPrice)

	store.UpdateQuantity("missing", 5)
	require.Len(t, store.Items(), 1)
}

func TestStoreClearKeepsVisibility(t *testing.T) {
	store := NewStore()
	store.Open()
	require.NoError(t, store.Add(product("a", "9.99"), 2))

	store.Clear()
	assert.Empty(t, store.Items())
	assert.Equal(t, 0, store.Totals().TotalItems)
	requireMoney(t, "0", store.Totals().TotalPrice)
	assert.True(t, store.IsOpen())

	store.Clear()
	assert.Empty(t, store.Items())
}

func TestStoreVisibilityNeverTouchesItems(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Add(product("a", "3.00"), 2))
	before := store.Items()
	totals := store.Totals()

	store.Open()
	store.Open()
	assert.True(t, store.IsOpen())
	store.Close()
	store.Close()
	assert.False(t, store.IsOpen())

	assert.Equal(t, before, store.Items())
	assert.Equal(t, totals.TotalItems, store.Totals().TotalItems)
	assert.True(t, totals.TotalPrice.Equal(store.Totals().TotalPrice))
}

func TestStoreItemsReturnsCopy(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Add(product("a", "1.00"), 1))

	items := store.Items()
	items[0].Quantity = 99
	assert.Equal(t, 1, store.Items()[0].Quantity)
}

func TestStoreRestore(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Add(product("keep", "1.00"), 1))

	valid := State{
		IsOpen: true,
		Items: []LineItem{
			{ProductID: "x", UnitPrice: decimal.RequireFromString("2.00"), Quantity: 2},
			{ProductID: "y", UnitPrice: decimal.RequireFromString("3.00"), Quantity: 1},
		},
	}
	require.NoError(t, store.Restore(valid))
	assert.True(t, store.IsOpen())
	assert.Equal(t, 3, store.Totals().TotalItems)
	requireMoney(t, "7.00", store.Totals().TotalPrice)

	invalid := []State{
		{Items: []LineItem{{ProductID: "x", Quantity: 1}, {ProductID: "x", Quantity: 2}}},
		{Items: []LineItem{{ProductID: "x", Quantity: 0}}},
		{Items: []LineItem{{ProductID: "x", Quantity: 1, UnitPrice: decimal.NewFromInt(-1)}}},
		{Items: []LineItem{{ProductID: "", Quantity: 1}}},
	}
	for i, state := range invalid {
		err := store.Restore(state)
		require.Errorf(t, err, "state %d", i)
		assert.True(t, errors.Is(err, ErrInvalidState))
	}
	assert.Equal(t, 3, store.Totals().TotalItems, "rejected restore must not modify the store")
}

func TestStoreConcurrentAdds(t *testing.T) {
	store := NewStore()
	const workers = 16
	const perWorker = 50

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				_ = store.AddOne(product("shared", "0.50"))
				_ = store.Totals()
			}
		}()
	}
	wg.Wait()

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, workers*perWorker, items[0].Quantity)
	requireMoney(t, "400.00", store.Totals().TotalPrice)
}
