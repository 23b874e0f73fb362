package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/avolkov/storefront/internal/config"
	"github.com/avolkov/storefront/internal/es"
	"github.com/avolkov/storefront/internal/handlers"
	"github.com/avolkov/storefront/internal/logging"
	"github.com/avolkov/storefront/internal/mykafka"
	"github.com/avolkov/storefront/internal/repo"
	cartsvc "github.com/avolkov/storefront/internal/service/cart"
	ordersvc "github.com/avolkov/storefront/internal/service/order"
	"github.com/avolkov/storefront/internal/service/token"
	httpserver "github.com/avolkov/storefront/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	brokers := []string{configuration.KAFKA_ADDRESS}
	topics := []string{"user_events", "cart_events", "order_events", "product_events"}
	prod, err := mykafka.NewProducer(brokers, topics)
	if err != nil {
		log.Fatal(err)
	}

	esClient, err := es.NewClient(configuration)
	if err != nil {
		log.Fatal(err)
	}

	catalogRepo := repo.NewCatalog(db)
	cartRepo := repo.NewCart(db)
	orderRepo := repo.NewOrders(db)
	txManager := repo.NewTxManager(db)

	tokens := &token.TokenService{
		DB:            db,
		JWTSecret:     []byte(configuration.JWT_SECRET),
		RefreshSecret: []byte(configuration.REFRESH_SECRET),
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := logging.IntoContext(c.Request().Context(), logger)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	})

	deps := httpserver.Deps{
		DB:          db,
		AuthHandler: &handlers.AuthHandler{DB: db, Tokens: tokens, Producer: prod},
		ProductHandler: &handlers.ProductHandler{
			Catalog: catalogRepo, Producer: prod, ES: esClient, Index: "product",
		},
		CartHandler: &handlers.CartHandler{
			Svc: cartsvc.NewService(cartRepo, catalogRepo), Producer: prod,
		},
		OrderHandler: &handlers.OrderHandler{
			Svc: ordersvc.NewService(txManager, orderRepo), Producer: prod,
		},
		SearchHandler: &handlers.SearchHandler{ES: esClient, Index: "product"},
		Tokens:        tokens,
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":8080",
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if err := prod.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	logger.Info("shutdown complete")
}
