package rabbitmq

import (
	"github.com/streadway/amqp"

	librabbitmq "github.com/magabrotheeeer/billing-service/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/billing-service/internal/models"
)

// ReminderPublisher публикует напоминания о счетах в обменник уведомлений.
type ReminderPublisher struct {
	ch *amqp.Channel
}

// NewReminderPublisher создает новый экземпляр ReminderPublisher.
func NewReminderPublisher(ch *amqp.Channel) *ReminderPublisher {
	return &ReminderPublisher{ch: ch}
}

// PublishReminder отправляет напоминание в очередь напоминаний о счетах.
func (p *ReminderPublisher) PublishReminder(reminder *models.InvoiceReminder) error {
	return librabbitmq.PublishMessage(p.ch, NotificationsExchange, RemindersRoutingKey, reminder)
}
