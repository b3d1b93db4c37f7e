package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/api"
	"github.com/RoyceAzure/lab/storefront/internal/api/handler"
	"github.com/RoyceAzure/lab/storefront/internal/api/router"
	"github.com/RoyceAzure/lab/storefront/internal/appcontext"
	"github.com/RoyceAzure/lab/storefront/internal/config"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/logger"
)

func main() {
	app, err := appcontext.NewApplicationContext(config.GetConfig())
	if err != nil {
		log.Fatal(err)
		return
	}
	l := logger.Component(app.Logger, "http")

	// 初始化 handler
	server := api.NewServer(
		handler.NewProductHandler(app.ProductService, l),
		handler.NewCartHandler(app.CartService, l),
		handler.NewOrderHandler(app.OrderService, app.ProductService, l),
		handler.NewContentHandler(app.ContentService, l),
		handler.NewImageHandler(app.ImageStore, l),
		handler.NewAdminHandler(app.AuthService, l),
	)

	// 設置路由
	r := router.SetupRouter(server, app.AuthService, app.LoginLimiter, app.Cf.CartSessionTTL, l)
	if err := router.LogRoutes(r, l); err != nil {
		l.Warn().Err(err).Msg("failed to walk routes")
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", app.Cf.ServerPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 設置訊號監聽
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	shutdownCompleted := make(chan struct{}, 1)
	go func() {
		<-sigChan
		app.Logger.Info().Msg("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.Logger.Error().Err(err).Msg("server shutdown error")
		}
		if err := app.Shutdown(shutdownCtx); err != nil {
			app.Logger.Error().Err(err).Msg("application shutdown error")
		}
		shutdownCompleted <- struct{}{}
	}()

	app.Logger.Info().Str("addr", srv.Addr).Msg("Server starting")
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		app.Logger.Fatal().Err(err).Msg("server stopped unexpectedly")
	}
	<-shutdownCompleted
	app.Logger.Info().Msg("closed completed")
}
