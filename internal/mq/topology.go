package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// Exchanges — имена обменников.
const (
	ExchangeEvents Exchange = "forgeflow.events"
)

// Queues — имена очередей.
const (
	QueueNotifications       Queue = "notifications"
	QueueExecutionsCompleted Queue = "executions.completed"
)

// Routing keys.
const (
	RoutingKeyNotify    RoutingKey = "notify"
	RoutingKeyCompleted RoutingKey = "completed"
)

// SetupTopology объявляет exchange, очереди и bindings.
// Идемпотентна: повторные вызовы безопасны.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.ExchangeDeclare(
			string(ExchangeEvents), // name
			"direct",               // type
			true,                   // durable
			false,                  // auto-deleted
			false,                  // internal
			false,                  // no-wait
			nil,                    // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ExchangeEvents, err)
		}

		bindings := []struct {
			queue      Queue
			routingKey RoutingKey
		}{
			{QueueNotifications, RoutingKeyNotify},
			{QueueExecutionsCompleted, RoutingKeyCompleted},
		}

		for _, b := range bindings {
			_, err := ch.QueueDeclare(
				string(b.queue), // name
				true,            // durable
				false,           // delete when unused
				false,           // exclusive
				false,           // no-wait
				nil,             // arguments
			)
			if err != nil {
				return fmt.Errorf("declare queue %s: %w", b.queue, err)
			}

			err = ch.QueueBind(
				string(b.queue),        // queue name
				string(b.routingKey),   // routing key
				string(ExchangeEvents), // exchange
				false,                  // no-wait
				nil,                    // arguments
			)
			if err != nil {
				return fmt.Errorf("bind queue %s: %w", b.queue, err)
			}
		}

		return nil
	})
}
