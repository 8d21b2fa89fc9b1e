package validators

import (
	"errors"
	"strings"
)

var ErrInvalidToken = errors.New("invalid auth token")

// BearerToken extracts the token from an Authorization header value. An empty
// header yields ("", nil); any other non-bearer value is ErrInvalidToken.
func BearerToken(header string) (string, error) {
	raw := strings.TrimSpace(header)
	if raw == "" {
		return "", nil
	}
	scheme, token, ok := strings.Cut(raw, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", ErrInvalidToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrInvalidToken
	}
	return token, nil
}
