package cart

import (
	"strings"

	"github.com/shopspring/decimal"

	cartdto "github.com/artisanmarket/cart-backend/api/controllers/cart/dto"
	"github.com/artisanmarket/cart-backend/api/validators"
	cartsvc "github.com/artisanmarket/cart-backend/internal/cart"
	pkgerrors "github.com/artisanmarket/cart-backend/pkg/errors"
)

const defaultAddQuantity = 1

func toAddItemInput(payload cartdto.AddItemRequest) (cartsvc.AddItemInput, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(payload.UnitPrice))
	if err != nil {
		return cartsvc.AddItemInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unit price").
			WithDetails(map[string]string{"unit_price": "must be a non-negative decimal amount"})
	}

	quantity := defaultAddQuantity
	if payload.Quantity != nil {
		quantity = *payload.Quantity
	}

	var imageURL *string
	if payload.ImageURL != nil {
		if url := strings.TrimSpace(*payload.ImageURL); url != "" {
			imageURL = &url
		}
	}

	return cartsvc.AddItemInput{
		Product: cartsvc.Product{
			ProductID:  strings.TrimSpace(payload.ProductID),
			Title:      validators.SanitizeString(payload.Title, 255),
			VendorName: validators.SanitizeString(payload.VendorName, 255),
			UnitPrice:  price,
			ImageURL:   imageURL,
		},
		Quantity: quantity,
	}, nil
}
