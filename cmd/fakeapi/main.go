// Command fakeapi serves the in-memory REST API on FAKE_API_ADDR (default :8080)
// so the dashboard can run locally without the real backend.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/duynhne/backoffice/config"
	"github.com/duynhne/backoffice/internal/core/fakeapi"
	"github.com/duynhne/backoffice/middleware"
)

func main() {
	_ = godotenv.Load()

	logger, err := middleware.NewLogger(config.LoggingConfig{Level: "info", Format: "console"})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	addr := os.Getenv("FAKE_API_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	gin.SetMode(gin.ReleaseMode)

	api := fakeapi.New()
	if os.Getenv("FAKE_API_SEED") != "false" {
		seed(api)
		logger.Info("Sample data seeded")
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting fake API", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start fake API", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Fake API shutdown error", zap.Error(err))
	}
	logger.Info("Fake API stopped")
}

func seed(api *fakeapi.Server) {
	tools := api.Seed("categories", fakeapi.Document{"name": "Tools", "description": "Hand and power tools"})
	garden := api.Seed("categories", fakeapi.Document{"name": "Garden", "description": ""})

	alice := api.Seed("users", fakeapi.Document{
		"username":        "alice",
		"email":           "alice@example.com",
		"phone":           "555-0100",
		"shippingAddress": "1 Main St",
		"billingAddress":  "1 Main St",
	})

	api.Seed("items", fakeapi.Document{"name": "Widget", "description": "", "price": 9.99, "category": tools})
	api.Seed("items", fakeapi.Document{"name": "Hose", "description": "15m garden hose", "price": 24.5, "category": garden})
	api.Seed("orders", fakeapi.Document{"userId": alice, "itemName": "Widget", "description": "Two units", "price": 19.98})
}
