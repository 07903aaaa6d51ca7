package main

import (
	"net/http"

	"pasalmart-be/internal/cart"
	"pasalmart-be/internal/config"
	"pasalmart-be/internal/db"
	"pasalmart-be/internal/inventory"
	"pasalmart-be/internal/logger"
	"pasalmart-be/internal/notifier"
	"pasalmart-be/internal/order"
	"pasalmart-be/internal/payment"
	"pasalmart-be/internal/payment/webhook"
	"pasalmart-be/internal/transport"

	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	inventoryRepo := inventory.NewRepository(database)
	ledger := inventory.NewLedger(inventoryRepo)

	cartRepo := cart.NewRepository(database)
	orderRepo := order.NewRepository(database)

	gateway := payment.NewEsewaGateway(
		cfg.EsewaSecretKey,
		cfg.EsewaProductCode,
		cfg.EsewaSuccessURL,
		cfg.EsewaFailureURL,
	)

	events := notifier.NewNop()
	if cfg.RedisAddr != "" {
		events = notifier.NewRedisNotifier(cfg.RedisAddr)
	}

	orderSvc := order.NewService(orderRepo, cartRepo, ledger, gateway, events)

	handler := transport.NewHandler(orderSvc)
	hook := webhook.NewWebhookHandler(orderSvc, gateway)
	router := transport.NewRouter(handler, hook)

	logger.L().Info("server listening", zap.String("port", cfg.AppPort))
	if err := http.ListenAndServe(":"+cfg.AppPort, router); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}
