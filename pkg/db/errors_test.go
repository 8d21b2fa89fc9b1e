package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "ux_cart_sessions_session_key"}

	cases := []struct {
		name       string
		err        error
		constraint string
		want       bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "pg any", err: pgErr, want: true},
		{name: "pg wrapped match", err: fmt.Errorf("save: %w", pgErr), constraint: "ux_cart_sessions_session_key", want: true},
		{name: "pg other constraint", err: pgErr, constraint: "ux_other", want: false},
		{name: "pg other code", err: &pgconn.PgError{Code: "23503"}, want: false},
		{name: "sqlite", err: errors.New("UNIQUE constraint failed: cart_sessions.session_key"), constraint: "cart_sessions.session_key", want: true},
		{name: "unrelated", err: errors.New("connection refused"), want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsUniqueViolation(tc.err, tc.constraint); got != tc.want {
				t.Fatalf("expected %v got %v", tc.want, got)
			}
		})
	}
}
