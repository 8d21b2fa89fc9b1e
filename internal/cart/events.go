package cart

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/artisanmarket/cart-backend/pkg/enums"
)

// Event describes one committed cart mutation for downstream consumers
// (analytics, abandoned-cart mail). It carries totals, not line items.
type Event struct {
	SessionID  string              `json:"session_id"`
	Operation  enums.CartOperation `json:"operation"`
	ProductID  string              `json:"product_id,omitempty"`
	TotalItems int                 `json:"total_items"`
	TotalPrice decimal.Decimal     `json:"total_price"`
	IsOpen     bool                `json:"is_open"`
	OccurredAt time.Time           `json:"occurred_at"`
}

// EventPublisher delivers cart events. Publishing is best effort: a failure
// is logged and never fails the cart operation that produced the event.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

func newEvent(op enums.CartOperation, productID string, view *View, at time.Time) Event {
	return Event{
		SessionID:  view.SessionID,
		Operation:  op,
		ProductID:  productID,
		TotalItems: view.Totals.TotalItems,
		TotalPrice: view.Totals.TotalPrice,
		IsOpen:     view.IsOpen,
		OccurredAt: at.UTC(),
	}
}
