package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/artisanmarket/cart-backend/api/responses"
	"github.com/artisanmarket/cart-backend/api/validators"
	pkgAuth "github.com/artisanmarket/cart-backend/pkg/auth"
	"github.com/artisanmarket/cart-backend/pkg/config"
	pkgerrors "github.com/artisanmarket/cart-backend/pkg/errors"
	"github.com/artisanmarket/cart-backend/pkg/logger"
)

const (
	HeaderCartSession = "X-Cart-Session"

	guestSessionPrefix    = "guest:"
	customerSessionPrefix = "customer:"
)

// GuestSessionID scopes a guest cart id.
func GuestSessionID(id uuid.UUID) string {
	return guestSessionPrefix + id.String()
}

// CustomerSessionID scopes a signed-in customer's cart.
func CustomerSessionID(id uuid.UUID) string {
	return customerSessionPrefix + id.String()
}

// CartSession resolves which cart a request operates on. A verified bearer
// token selects the customer's cart; otherwise the X-Cart-Session header
// selects a guest cart, and a fresh guest id is minted when it is absent.
// Guest ids are echoed back in the X-Cart-Session response header.
// With no JWT secret configured the Authorization header is ignored.
func CartSession(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if cfg.Enabled() {
				token, err := validators.BearerToken(r.Header.Get("Authorization"))
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid credentials"))
					return
				}
				if token != "" {
					claims, err := pkgAuth.ParseAccessToken(cfg, token)
					if err != nil {
						responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
						return
					}

					customerID := claims.UserID.String()
					sessionID := CustomerSessionID(claims.UserID)
					ctx = WithCustomerID(WithCartSession(ctx, sessionID), customerID)
					if logg != nil {
						ctx = logg.WithCustomerID(logg.WithCartSession(ctx, sessionID), customerID)
					}
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			guestID := uuid.New()
			if raw := strings.TrimSpace(r.Header.Get(HeaderCartSession)); raw != "" {
				parsed, err := uuid.Parse(raw)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cart session").
						WithDetails(map[string]any{"header": HeaderCartSession}))
					return
				}
				guestID = parsed
			}

			w.Header().Set(HeaderCartSession, guestID.String())
			sessionID := GuestSessionID(guestID)
			ctx = WithCartSession(ctx, sessionID)
			if logg != nil {
				ctx = logg.WithCartSession(ctx, sessionID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
