package cart

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	cartdto "github.com/artisanmarket/cart-backend/api/controllers/cart/dto"
	"github.com/artisanmarket/cart-backend/api/middleware"
	"github.com/artisanmarket/cart-backend/api/responses"
	"github.com/artisanmarket/cart-backend/api/validators"
	cartsvc "github.com/artisanmarket/cart-backend/internal/cart"
	pkgerrors "github.com/artisanmarket/cart-backend/pkg/errors"
	"github.com/artisanmarket/cart-backend/pkg/logger"
)

// CartFetch returns the session's cart; a session with no stored cart reads as empty.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return sessionHandler(svc, logg, func(ctx context.Context, r *http.Request, sessionID string) (*cartsvc.View, error) {
		return svc.GetCart(ctx, sessionID)
	})
}

// CartAddItem adds a product snapshot, merging quantities for a product already in the cart.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return sessionHandler(svc, logg, func(ctx context.Context, r *http.Request, sessionID string) (*cartsvc.View, error) {
		var payload cartdto.AddItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return nil, err
		}
		input, err := toAddItemInput(payload)
		if err != nil {
			return nil, err
		}
		return svc.AddItem(ctx, sessionID, input)
	})
}

// CartUpdateQuantity sets a line's quantity; zero or less removes it.
func CartUpdateQuantity(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return sessionHandler(svc, logg, func(ctx context.Context, r *http.Request, sessionID string) (*cartsvc.View, error) {
		productID, err := productIDParam(r)
		if err != nil {
			return nil, err
		}
		var payload cartdto.UpdateQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return nil, err
		}
		return svc.UpdateQuantity(ctx, sessionID, productID, *payload.Quantity)
	})
}

// CartRemoveItem deletes a line. Removing an absent product succeeds.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return sessionHandler(svc, logg, func(ctx context.Context, r *http.Request, sessionID string) (*cartsvc.View, error) {
		productID, err := productIDParam(r)
		if err != nil {
			return nil, err
		}
		return svc.RemoveItem(ctx, sessionID, productID)
	})
}

func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return sessionHandler(svc, logg, func(ctx context.Context, r *http.Request, sessionID string) (*cartsvc.View, error) {
		return svc.Clear(ctx, sessionID)
	})
}

func CartOpen(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return sessionHandler(svc, logg, func(ctx context.Context, r *http.Request, sessionID string) (*cartsvc.View, error) {
		return svc.Open(ctx, sessionID)
	})
}

func CartClose(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return sessionHandler(svc, logg, func(ctx context.Context, r *http.Request, sessionID string) (*cartsvc.View, error) {
		return svc.Close(ctx, sessionID)
	})
}

type cartCall func(ctx context.Context, r *http.Request, sessionID string) (*cartsvc.View, error)

func sessionHandler(svc cartsvc.Service, logg *logger.Logger, call cartCall) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		sessionID := middleware.CartSessionFromContext(r.Context())
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart session missing"))
			return
		}

		view, err := call(r.Context(), r, sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartView(view))
	}
}

func productIDParam(r *http.Request) (string, error) {
	productID := strings.TrimSpace(chi.URLParam(r, "productId"))
	if productID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	return productID, nil
}
