// Package scheduler собирает приложение-планировщик биллинга.
//
// Ежедневные задания: генерация счетов по стартующим подпискам, перевод
// просроченных счетов в overdue и публикация напоминаний в очередь.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/billing-service/internal/config"
	"github.com/magabrotheeeer/billing-service/internal/lib/sl"
	"github.com/magabrotheeeer/billing-service/internal/rabbitmq"
	invoiceservice "github.com/magabrotheeeer/billing-service/internal/services/invoice"
	"github.com/magabrotheeeer/billing-service/internal/storage"
)

const (
	rabbitMQMaxRetries = 10
	rabbitMQRetryDelay = 3 * time.Second
)

// App представляет приложение планировщика.
type App struct {
	invoiceService *invoiceservice.InvoiceService
	conn           *amqp.Connection
	ch             *amqp.Channel
	logger         *slog.Logger
}

func waitForDB(ctx context.Context, db *storage.Storage) error {
	for range 10 {
		if err := db.CheckDatabaseReady(ctx); err == nil {
			return nil
		}
		time.Sleep(3 * time.Second)
	}
	return fmt.Errorf("database not ready after retries")
}

// New создает новый экземпляр приложения планировщика.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQConnection, rabbitMQMaxRetries, rabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn)
	if err != nil {
		closeResources(nil, conn, logger)
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	if err := waitForDB(ctx, db); err != nil {
		closeResources(ch, conn, logger)
		return nil, err
	}

	publisher := rabbitmq.NewReminderPublisher(ch)
	invoiceService := invoiceservice.NewInvoiceService(db, publisher, logger)

	return &App{
		invoiceService: invoiceService,
		conn:           conn,
		ch:             ch,
		logger:         logger,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", sl.Err(err))
		}
	}
}

// Run регистрирует ежедневные задания и блокируется до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	c := cron.New()

	if _, err := c.AddFunc("0 0 * * *", func() {
		if _, err := a.invoiceService.GenerateDailyInvoices(ctx); err != nil {
			a.logger.Error("daily invoice generation failed", sl.Err(err))
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule invoice generation: %w", err)
	}

	if _, err := c.AddFunc("0 0 * * *", func() {
		if _, err := a.invoiceService.MarkOverdue(ctx); err != nil {
			a.logger.Error("overdue marking failed", sl.Err(err))
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule overdue marking: %w", err)
	}

	if _, err := c.AddFunc("0 9 * * *", func() {
		if _, err := a.invoiceService.SendPendingReminders(ctx); err != nil {
			a.logger.Error("reminder publishing failed", sl.Err(err))
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule reminders: %w", err)
	}

	c.Start()
	a.logger.Info("scheduler started")

	<-ctx.Done()

	a.logger.Info("shutting down scheduler service")
	stopCtx := c.Stop()
	<-stopCtx.Done()

	closeResources(a.ch, a.conn, a.logger)
	return nil
}
