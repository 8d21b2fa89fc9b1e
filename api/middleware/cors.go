package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

var defaultCORSOrigins = []string{
	"http://localhost:3000", // storefront dev server
	"http://localhost:5173", // vite preview
}

// CORS returns middleware that applies the API's allowed origin policy.
// An empty origins list falls back to the local development origins.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = defaultCORSOrigins
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", HeaderCartSession, "Idempotency-Key", requestIDHeader, "X-Requested-With"},
		ExposedHeaders:   []string{HeaderCartSession, requestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
