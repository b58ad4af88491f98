// Package payment содержит логику оплаты счетов через платёжный шлюз.
//
// Успех оплаты не принимается на слово: перед отметкой счёта оплаченным
// состояние интента перепроверяется на стороне шлюза.
package payment

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/magabrotheeeer/billing-service/internal/errs"
	"github.com/magabrotheeeer/billing-service/internal/lib/authz"
	"github.com/magabrotheeeer/billing-service/internal/models"
	"github.com/magabrotheeeer/billing-service/internal/paymentgateway"
)

// intentStatusSucceeded статус интента Stripe после успешного списания.
const intentStatusSucceeded = "succeeded"

// PaymentRepository определяет методы хранилища, нужные для оплаты счетов.
type PaymentRepository interface {
	// ReadUnpaidInvoice возвращает неоплаченный счёт или errs.ErrNotFound.
	ReadUnpaidInvoice(ctx context.Context, id int) (*models.Invoice, error)
	ReadInvoice(ctx context.Context, id int) (*models.Invoice, error)
	MarkInvoicePaid(ctx context.Context, id int) (int, error)
}

// Gateway определяет операции платёжного шлюза.
type Gateway interface {
	CreateIntent(invoiceID int, amount float64) (*paymentgateway.Intent, error)
	GetIntent(id string) (*paymentgateway.Intent, error)
}

// PaymentService реализует оплату счетов через внешний шлюз.
type PaymentService struct {
	repo    PaymentRepository
	gateway Gateway
	log     *slog.Logger
}

// NewPaymentService создает новый экземпляр PaymentService.
func NewPaymentService(repo PaymentRepository, gateway Gateway, log *slog.Logger) *PaymentService {
	return &PaymentService{
		repo:    repo,
		gateway: gateway,
		log:     log,
	}
}

// CreatePaymentIntent создаёт интент на оплату неоплаченного счёта.
// Для оплаченного или отсутствующего счёта возвращает errs.ErrNotFound.
func (s *PaymentService) CreatePaymentIntent(ctx context.Context, actor authz.Actor, invoiceID int) (*paymentgateway.Intent, error) {
	inv, err := s.repo.ReadUnpaidInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if !authz.OwnerOrAdmin(actor, inv.UserUID) {
		return nil, errs.ErrPermissionDenied
	}

	intent, err := s.gateway.CreateIntent(inv.ID, inv.Amount)
	if err != nil {
		return nil, err
	}

	s.log.Info("created payment intent",
		slog.Int("invoice_id", inv.ID), slog.String("intent_id", intent.ID))
	return intent, nil
}

// ConfirmPaymentSuccess отмечает счёт оплаченным после проверки интента:
// интент должен быть в статусе succeeded и ссылаться на этот счёт.
// Неподтверждённый платёж — errs.ErrPaymentNotConfirmed, повторное
// подтверждение — errs.ErrAlreadyPaid.
func (s *PaymentService) ConfirmPaymentSuccess(ctx context.Context, actor authz.Actor, invoiceID int, paymentIntentID string) error {
	inv, err := s.repo.ReadInvoice(ctx, invoiceID)
	if err != nil {
		return err
	}
	if !authz.OwnerOrAdmin(actor, inv.UserUID) {
		return errs.ErrPermissionDenied
	}

	intent, err := s.gateway.GetIntent(paymentIntentID)
	if err != nil {
		return err
	}
	if intent.Status != intentStatusSucceeded || intent.InvoiceID != strconv.Itoa(invoiceID) {
		s.log.Warn("payment confirmation rejected",
			slog.Int("invoice_id", invoiceID),
			slog.String("intent_id", paymentIntentID),
			slog.String("intent_status", intent.Status))
		return errs.ErrPaymentNotConfirmed
	}

	rows, err := s.repo.MarkInvoicePaid(ctx, invoiceID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return errs.ErrAlreadyPaid
	}

	s.log.Info("payment confirmed",
		slog.Int("invoice_id", invoiceID), slog.String("intent_id", paymentIntentID))
	return nil
}
