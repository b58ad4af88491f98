// Package sender собирает приложение-рассыльщик напоминаний о счетах.
package sender

import (
	"context"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/billing-service/internal/config"
	"github.com/magabrotheeeer/billing-service/internal/lib/sl"
	"github.com/magabrotheeeer/billing-service/internal/lib/smtp"
	"github.com/magabrotheeeer/billing-service/internal/rabbitmq"
	senderservice "github.com/magabrotheeeer/billing-service/internal/services/sender"
)

const (
	rabbitMQMaxRetries = 10
	rabbitMQRetryDelay = 3 * time.Second
)

// App представляет приложение рассыльщика.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.SenderService
	logger        *slog.Logger
}

// New создает новый экземпляр приложения рассыльщика.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQConnection, rabbitMQMaxRetries, rabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}

	ch, err := rabbitmq.SetupChannel(conn)
	if err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			logger.Error("failed to close connection", sl.Err(closeErr))
		}
		return nil, err
	}

	transport := smtp.NewTransport(cfg, logger)
	senderService := senderservice.NewSenderService(transport, logger)

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderService,
		logger:        logger,
	}, nil
}

// Run запускает потребителя очереди напоминаний и блокируется до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumerMessage(ctx, a.ch, rabbitmq.RemindersQueue, a.senderService.SendInvoiceReminder)
	if err != nil {
		a.logger.Error("failed to start reminders consumer", sl.Err(err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("sender service shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	return nil
}
