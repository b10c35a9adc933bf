package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/angelmondragon/haani-backend/pkg/config"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	ok := pingerFunc(func(context.Context) error { return nil })
	down := pingerFunc(func(context.Context) error { return errors.New("connection refused") })

	resp := httptest.NewRecorder()
	HealthReady(cfg, testLogger(), map[string]Pinger{"database": ok, "redis": nil})(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if resp.Header().Get("X-Haani-Env") != "test" {
		t.Fatal("missing env header")
	}
	var data struct {
		Checks map[string]string `json:"checks"`
	}
	decodeData(t, resp, &data)
	if data.Checks["database"] != "ok" {
		t.Fatalf("unexpected checks %+v", data.Checks)
	}
	if _, present := data.Checks["redis"]; present {
		t.Fatal("nil pinger should be skipped")
	}

	resp = httptest.NewRecorder()
	HealthReady(cfg, testLogger(), map[string]Pinger{"database": down})(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}
