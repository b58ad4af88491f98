package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

// Имена обменника, очереди и ключа маршрутизации напоминаний о счетах.
const (
	NotificationsExchange = "notifications"
	RemindersQueue        = "notifications.invoice-reminders"
	RemindersRoutingKey   = "invoice-reminder"
)

// SetupChannel открывает канал, объявляет обменник уведомлений
// и очередь напоминаний, связывая их ключом маршрутизации.
func SetupChannel(conn *amqp.Connection) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		return nil, fmt.Errorf("%s: failed to set QoS: %w", op, err)
	}
	err = ch.ExchangeDeclare(
		NotificationsExchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	_, err = ch.QueueDeclare(
		RemindersQueue,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	err = ch.QueueBind(RemindersQueue, RemindersRoutingKey, NotificationsExchange, false, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ch, nil
}
