package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/lms/internal/config"
	"github.com/yigit/lms/internal/testutil"
)

func TestNewServerAndShutdown(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.Database.Driver = config.DriverSQLite
	cfg.Database.DSN = testutil.MemoryDSN()
	cfg.Server.ShutdownTimeout = "1s"
	cfg.Seed.Enabled = true

	srv, err := NewServer(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users/3", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/users/3 = %d %s", w.Code, w.Body.String())
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("second Shutdown() error = %v", err)
	}
}

func TestNewServerFailsOnBadDriver(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database.Driver = "oracle"

	if _, err := NewServer(context.Background(), cfg, zerolog.Nop()); err == nil {
		t.Fatal("NewServer() error = nil")
	}
}
