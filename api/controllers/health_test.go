package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/artisanmarket/cart-backend/pkg/config"
)

type pingerFunc func(context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthLive(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}
	resp := httptest.NewRecorder()
	HealthLive(cfg).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if resp.Header().Get("X-ArtisanMarket-Env") != "dev" {
		t.Fatalf("expected env header")
	}
}

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}
	up := pingerFunc(func(context.Context) error { return nil })
	down := pingerFunc(func(context.Context) error { return errors.New("connection refused") })

	tests := []struct {
		name   string
		deps   map[string]Pinger
		status int
	}{
		{"all up", map[string]Pinger{"db": up, "redis": up}, http.StatusOK},
		{"redis unconfigured", map[string]Pinger{"db": up, "redis": nil}, http.StatusOK},
		{"db down", map[string]Pinger{"db": down, "redis": up}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		resp := httptest.NewRecorder()
		HealthReady(cfg, nil, tt.deps).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		if resp.Code != tt.status {
			t.Fatalf("%s: expected %d got %d", tt.name, tt.status, resp.Code)
		}
	}
}

func TestHealthReadyReportsFailingDependency(t *testing.T) {
	cfg := &config.Config{}
	down := pingerFunc(func(context.Context) error { return errors.New("timeout") })
	resp := httptest.NewRecorder()
	HealthReady(cfg, nil, map[string]Pinger{"redis": down}).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	var envelope struct {
		Error struct {
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Error.Details["redis"] != "down" {
		t.Fatalf("expected redis reported down, got %+v", envelope.Error.Details)
	}
}
