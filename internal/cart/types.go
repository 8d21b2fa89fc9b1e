package cart

import (
	"github.com/shopspring/decimal"
)

// MaxLineQuantity caps the quantity of a single line item.
const MaxLineQuantity = 9999

// LineItem is one product entry in a cart. Title, vendor, price and image are
// a snapshot taken when the product was first added.
type LineItem struct {
	ProductID  string          `json:"product_id"`
	Title      string          `json:"title"`
	VendorName string          `json:"vendor_name"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
	ImageURL   *string         `json:"image_url,omitempty"`
}

// Subtotal is UnitPrice x Quantity.
func (i LineItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (i LineItem) clone() LineItem {
	if i.ImageURL != nil {
		url := *i.ImageURL
		i.ImageURL = &url
	}
	return i
}

// Product is the catalog snapshot supplied by the caller when adding to the cart.
type Product struct {
	ProductID  string
	Title      string
	VendorName string
	UnitPrice  decimal.Decimal
	ImageURL   *string
}

func (p Product) lineItem(quantity int) LineItem {
	return LineItem{
		ProductID:  p.ProductID,
		Title:      p.Title,
		VendorName: p.VendorName,
		UnitPrice:  p.UnitPrice,
		Quantity:   quantity,
		ImageURL:   p.ImageURL,
	}.clone()
}

// Totals are derived from the items on every read and never stored.
type Totals struct {
	TotalItems int
	TotalPrice decimal.Decimal
}

// State is the persisted form of a cart.
type State struct {
	Items  []LineItem `json:"items"`
	IsOpen bool       `json:"is_open"`
}

// IsZero reports whether the state carries nothing worth persisting.
func (s State) IsZero() bool {
	return len(s.Items) == 0 && !s.IsOpen
}

func (s State) clone() State {
	items := make([]LineItem, len(s.Items))
	for i, item := range s.Items {
		items[i] = item.clone()
	}
	return State{Items: items, IsOpen: s.IsOpen}
}

// View is what the service hands back to callers after every operation.
type View struct {
	SessionID string
	Items     []LineItem
	Totals    Totals
	IsOpen    bool
}

// AddItemInput carries an add-to-cart request.
type AddItemInput struct {
	Product  Product
	Quantity int
}
