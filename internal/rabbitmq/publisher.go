package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/meal-subscription/internal/models"
)

// PublishMessage публикует сообщение в формате JSON.
func PublishMessage(ch *amqp.Channel, exchange string, routingKey string, message any) error {
	const op = "rabbitmq.PublishMessage"
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = ch.Publish(exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// OrderPublisher публикует события о новых заказах в обменник orders.
type OrderPublisher struct {
	ch *amqp.Channel
}

// NewOrderPublisher создаёт публикатора поверх настроенного канала.
func NewOrderPublisher(ch *amqp.Channel) *OrderPublisher {
	return &OrderPublisher{ch: ch}
}

// PublishOrderScheduled отправляет событие о запланированном заказе.
func (p *OrderPublisher) PublishOrderScheduled(ctx context.Context, event models.OrderScheduledEvent) error {
	const op = "rabbitmq.PublishOrderScheduled"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}
	if err := PublishMessage(p.ch, OrdersExchange, OrderScheduledKey, event); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
