// Package api собирает и запускает HTTP-сервис биллинга: хранилище, кеш,
// платёжный шлюз, сервисы и маршруты.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/billing-service/internal/cache"
	"github.com/magabrotheeeer/billing-service/internal/config"
	"github.com/magabrotheeeer/billing-service/internal/lib/jwt"
	"github.com/magabrotheeeer/billing-service/internal/migrations"
	"github.com/magabrotheeeer/billing-service/internal/paymentgateway"
	authservice "github.com/magabrotheeeer/billing-service/internal/services/auth"
	invoiceservice "github.com/magabrotheeeer/billing-service/internal/services/invoice"
	paymentservice "github.com/magabrotheeeer/billing-service/internal/services/payment"
	planservice "github.com/magabrotheeeer/billing-service/internal/services/plan"
	subscriptionservice "github.com/magabrotheeeer/billing-service/internal/services/subscription"
	"github.com/magabrotheeeer/billing-service/internal/storage"
)

// App представляет HTTP-приложение биллинга.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
}

// New собирает приложение: подключает зависимости, применяет миграции
// и регистрирует маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL, cfg.RefreshTokenTTL)
	gateway := paymentgateway.New(cfg.Stripe.SecretKey, cfg.Stripe.Currency)

	authService := authservice.NewAuthService(db, jwtMaker)
	planService := planservice.NewPlanService(db, cacheRedis, logger)
	subscriptionService := subscriptionservice.NewSubscriptionService(db, logger)
	invoiceService := invoiceservice.NewInvoiceService(db, nil, logger)
	paymentService := paymentservice.NewPaymentService(db, gateway, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, &Services{
		Auth:           authService,
		Plan:           planService,
		Subscription:   subscriptionService,
		Invoice:        invoiceService,
		Payment:        paymentService,
		Storage:        db,
		PublishableKey: cfg.Stripe.PublishableKey,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
	}, nil
}

// Run запускает HTTP-сервер и корректно останавливает его по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if closeErr := a.db.DB.Close(); closeErr != nil {
			a.logger.Error("failed to close database", slog.Any("err", closeErr))
		}
		return err
	}
}
