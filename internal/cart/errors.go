package cart

import (
	"errors"
	"fmt"

	pkgerrors "github.com/artisanmarket/cart-backend/pkg/errors"
)

var (
	// ErrInvalidQuantity is returned when Add receives a quantity below 1 or
	// would push a line past MaxLineQuantity.
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrInvalidProduct  = errors.New("invalid product")
	ErrInvalidState    = errors.New("invalid cart state")
)

func invalidQuantity(quantity int) error {
	return pkgerrors.Wrap(pkgerrors.CodeInvalidQuantity, ErrInvalidQuantity,
		fmt.Sprintf("quantity must be between 1 and %d", MaxLineQuantity)).
		WithDetails(map[string]any{"quantity": quantity, "max": MaxLineQuantity})
}

func lineQuantityExceeded(current, requested int) error {
	return pkgerrors.Wrap(pkgerrors.CodeInvalidQuantity, ErrInvalidQuantity,
		fmt.Sprintf("a cart line holds at most %d units", MaxLineQuantity)).
		WithDetails(map[string]any{"quantity": requested, "in_cart": current, "max": MaxLineQuantity})
}

func invalidProduct(field, reason string) error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, ErrInvalidProduct, "invalid product").
		WithDetails(map[string]any{"field": field, "reason": reason})
}
