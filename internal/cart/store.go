package cart

import (
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/artisanmarket/cart-backend/pkg/errors"
	"github.com/artisanmarket/cart-backend/pkg/types"
)

// Store is the cart state machine: an ordered list of line items keyed by
// product id plus the drawer visibility flag. It is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	items  []LineItem
	isOpen bool
}

// NewStore returns an empty, closed cart.
func NewStore() *Store {
	return &Store{}
}

// Add puts quantity units of product in the cart. A product already present
// keeps its original snapshot and only its quantity grows; a new product is
// appended at the end. The resulting line may not exceed MaxLineQuantity.
func (s *Store) Add(product Product, quantity int) error {
	if quantity <= 0 || quantity > MaxLineQuantity {
		return invalidQuantity(quantity)
	}
	if err := validateProduct(product); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if idx := s.indexOf(product.ProductID); idx >= 0 {
		current := s.items[idx].Quantity
		if current > MaxLineQuantity-quantity {
			return lineQuantityExceeded(current, quantity)
		}
		s.items[idx].Quantity = current + quantity
		return nil
	}
	s.items = append(s.items, product.lineItem(quantity))
	return nil
}

// AddOne is Add with the default quantity of one.
func (s *Store) AddOne(product Product) error {
	return s.Add(product, 1)
}

// Remove drops the product if present.
func (s *Store) Remove(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(productID)
}

// UpdateQuantity sets the quantity of a present product. A quantity of zero or
// less removes it, one above MaxLineQuantity is clamped; an absent product is
// left alone.
func (s *Store) UpdateQuantity(productID string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.removeLocked(productID)
		return
	}
	quantity = min(quantity, MaxLineQuantity)
	if idx := s.indexOf(productID); idx >= 0 {
		s.items[idx].Quantity = quantity
	}
}

// Clear empties the cart without touching visibility.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
}

func (s *Store) Open() {
	s.mu.Lock()
	s.isOpen = true
	s.mu.Unlock()
}

func (s *Store) Close() {
	s.mu.Lock()
	s.isOpen = false
	s.mu.Unlock()
}

// Items returns a copy of the line items in insertion order.
func (s *Store) Items() []LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]LineItem, len(s.items))
	for i, item := range s.items {
		out[i] = item.clone()
	}
	return out
}

// Totals sums quantities and subtotals over the current items.
func (s *Store) Totals() Totals {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return totalsOf(s.items)
}

func (s *Store) IsOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isOpen
}

// Snapshot returns the persistable state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{Items: s.items, IsOpen: s.isOpen}.clone()
}

// Restore replaces the store contents with a previously persisted state. The
// store is unchanged when the state is rejected.
func (s *Store) Restore(state State) error {
	if err := validateState(state); err != nil {
		return err
	}
	restored := state.clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = restored.Items
	if len(s.items) == 0 {
		s.items = nil
	}
	s.isOpen = restored.IsOpen
	return nil
}

func (s *Store) indexOf(productID string) int {
	for i := range s.items {
		if s.items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) removeLocked(productID string) {
	idx := s.indexOf(productID)
	if idx < 0 {
		return
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	if len(s.items) == 0 {
		s.items = nil
	}
}

func totalsOf(items []LineItem) Totals {
	totals := Totals{TotalPrice: decimal.Zero}
	for _, item := range items {
		totals.TotalItems += item.Quantity
		totals.TotalPrice = totals.TotalPrice.Add(item.Subtotal())
	}
	return totals
}

func validateProduct(product Product) error {
	if strings.TrimSpace(product.ProductID) == "" {
		return invalidProduct("product_id", "required")
	}
	if product.UnitPrice.IsNegative() {
		return invalidProduct("unit_price", "must not be negative")
	}
	if !types.ValidPrice(product.UnitPrice) {
		return invalidProduct("unit_price", "must be below 10000000000 with at most 2 decimal places")
	}
	return nil
}

func validateState(state State) error {
	seen := make(map[string]struct{}, len(state.Items))
	for i, item := range state.Items {
		if strings.TrimSpace(item.ProductID) == "" {
			return stateError(i, "missing product id")
		}
		if _, dup := seen[item.ProductID]; dup {
			return stateError(i, fmt.Sprintf("duplicate product %q", item.ProductID))
		}
		seen[item.ProductID] = struct{}{}
		if item.Quantity <= 0 {
			return stateError(i, fmt.Sprintf("non-positive quantity %d", item.Quantity))
		}
		if item.UnitPrice.IsNegative() {
			return stateError(i, "negative unit price")
		}
	}
	return nil
}

func stateError(index int, reason string) error {
	return pkgerrors.Wrap(pkgerrors.CodeInternal, fmt.Errorf("%w: item %d: %s", ErrInvalidState, index, reason), "stored cart is corrupt")
}
