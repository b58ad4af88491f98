// Package api предоставляет маршруты HTTP-сервиса биллинга.
package api

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/billing-service/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/billing-service/internal/http/handlers/auth/refresh"
	"github.com/magabrotheeeer/billing-service/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/billing-service/internal/http/handlers/health"
	invoicelist "github.com/magabrotheeeer/billing-service/internal/http/handlers/invoice/list"
	invoicepay "github.com/magabrotheeeer/billing-service/internal/http/handlers/invoice/pay"
	paymentintent "github.com/magabrotheeeer/billing-service/internal/http/handlers/payment/intent"
	paymentsuccess "github.com/magabrotheeeer/billing-service/internal/http/handlers/payment/success"
	plancreate "github.com/magabrotheeeer/billing-service/internal/http/handlers/plan/create"
	planlist "github.com/magabrotheeeer/billing-service/internal/http/handlers/plan/list"
	planread "github.com/magabrotheeeer/billing-service/internal/http/handlers/plan/read"
	planremove "github.com/magabrotheeeer/billing-service/internal/http/handlers/plan/remove"
	planupdate "github.com/magabrotheeeer/billing-service/internal/http/handlers/plan/update"
	subcancel "github.com/magabrotheeeer/billing-service/internal/http/handlers/subscription/cancel"
	subcreate "github.com/magabrotheeeer/billing-service/internal/http/handlers/subscription/create"
	sublist "github.com/magabrotheeeer/billing-service/internal/http/handlers/subscription/list"
	"github.com/magabrotheeeer/billing-service/internal/http/middlewarectx"
	authservice "github.com/magabrotheeeer/billing-service/internal/services/auth"
	invoiceservice "github.com/magabrotheeeer/billing-service/internal/services/invoice"
	paymentservice "github.com/magabrotheeeer/billing-service/internal/services/payment"
	planservice "github.com/magabrotheeeer/billing-service/internal/services/plan"
	subscriptionservice "github.com/magabrotheeeer/billing-service/internal/services/subscription"
	"github.com/magabrotheeeer/billing-service/internal/storage"
)

// Services собирает сервисы, которые обслуживают HTTP-маршруты.
type Services struct {
	Auth         *authservice.AuthService
	Plan         *planservice.PlanService
	Subscription *subscriptionservice.SubscriptionService
	Invoice      *invoiceservice.InvoiceService
	Payment      *paymentservice.PaymentService
	Storage      *storage.Storage

	// Публикуемый ключ шлюза, отдаётся клиенту вместе с интентом.
	PublishableKey string
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s *Services) {
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/users", register.New(logger, s.Auth).ServeHTTP)
		r.Post("/token", login.New(logger, s.Auth).ServeHTTP)
		r.Post("/token/refresh", refresh.New(logger, s.Auth).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.Auth, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Get("/plans", planlist.New(logger, s.Plan).ServeHTTP)
			r.Get("/plans/{id}", planread.New(logger, s.Plan).ServeHTTP)

			r.Get("/subscriptions", sublist.New(logger, s.Subscription).ServeHTTP)
			r.Post("/subscriptions", subcreate.New(logger, s.Subscription).ServeHTTP)
			r.Delete("/subscriptions/{id}", subcancel.New(logger, s.Subscription).ServeHTTP)
			r.Post("/subscriptions/{id}/unsubscribe", subcancel.New(logger, s.Subscription).ServeHTTP)

			r.Get("/invoices", invoicelist.New(logger, s.Invoice).ServeHTTP)
			r.Post("/invoices/{id}/pay", invoicepay.New(logger, s.Invoice).ServeHTTP)

			r.Post("/create-payment-intent", paymentintent.New(logger, s.Payment, s.PublishableKey).ServeHTTP)
			r.Post("/payment-success", paymentsuccess.New(logger, s.Payment).ServeHTTP)

			// Группа только для администратора
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.AdminOnlyMiddleware(logger))
				r.Post("/plans", plancreate.New(logger, s.Plan).ServeHTTP)
				r.Put("/plans/{id}", planupdate.New(logger, s.Plan).ServeHTTP)
				r.Delete("/plans/{id}", planremove.New(logger, s.Plan).ServeHTTP)
			})
		})
	})

	r.Get("/health", health.New(logger, s.Storage).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
