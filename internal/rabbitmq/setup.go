package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

// Топология событий о заказах.
const (
	OrdersExchange      = "orders"
	OrderScheduledKey   = "scheduled"
	OrderScheduledQueue = "orders.scheduled"
	prefetchCount       = 10
	exchangeKindDirect  = "direct"
)

// QueueConfig описывает очередь и ключ, которым она привязана к обменнику.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// OrderQueues возвращает очереди, привязанные к обменнику заказов.
func OrderQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: OrderScheduledQueue, RoutingKey: OrderScheduledKey},
	}
}

// SetupChannel открывает канал, объявляет durable-обменник exchange
// и привязывает к нему очереди queues.
func SetupChannel(conn *amqp.Connection, exchange string, queues []QueueConfig) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = ch.Qos(prefetchCount, 0, false); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("%s: failed to set QoS: %w", op, err)
	}

	if err = ch.ExchangeDeclare(exchange, exchangeKindDirect, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, q := range queues {
		if _, err = ch.QueueDeclare(q.QueueName, true, false, false, false, nil); err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("%s: failed to declare queue %s: %w", op, q.QueueName, err)
		}
		if err = ch.QueueBind(q.QueueName, q.RoutingKey, exchange, false, nil); err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("%s: failed to bind queue %s with routing key %s: %w", op, q.QueueName, q.RoutingKey, err)
		}
	}

	return ch, nil
}
