package cart

import (
	cartdto "github.com/artisanmarket/cart-backend/api/controllers/cart/dto"
	cartsvc "github.com/artisanmarket/cart-backend/internal/cart"
	"github.com/artisanmarket/cart-backend/pkg/types"
)

func newCartView(view *cartsvc.View) cartdto.CartView {
	items := make([]cartdto.CartLine, 0, len(view.Items))
	for _, item := range view.Items {
		items = append(items, cartdto.CartLine{
			ProductID:  item.ProductID,
			Title:      item.Title,
			VendorName: item.VendorName,
			UnitPrice:  types.FormatMoney(item.UnitPrice),
			Quantity:   item.Quantity,
			Subtotal:   types.FormatMoney(item.Subtotal()),
			ImageURL:   item.ImageURL,
		})
	}

	return cartdto.CartView{
		SessionID:  view.SessionID,
		Items:      items,
		TotalItems: view.Totals.TotalItems,
		TotalPrice: types.FormatMoney(view.Totals.TotalPrice),
		IsOpen:     view.IsOpen,
	}
}
