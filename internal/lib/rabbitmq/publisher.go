// Package rabbitmq содержит публикацию событий биллинга в очередь уведомлений.
package rabbitmq

import (
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"
)

// Publisher инкапсулирует канал AMQP и имя exchange для событий биллинга.
type Publisher struct {
	ch       *amqp.Channel
	exchange string
}

// NewPublisher открывает соединение и канал, объявляет exchange и очереди.
func NewPublisher(connectionString string) (*Publisher, error) {
	const op = "rabbitmq.NewPublisher"
	conn, err := amqp.Dial(connectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = setupQueues(ch); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Publisher{ch: ch, exchange: billingExchange}, nil
}

// Publish публикует сообщение с указанным routing key.
func (p *Publisher) Publish(routingKey string, message any) error {
	const op = "rabbitmq.Publish"
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = p.ch.Publish(
		p.exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close закрывает канал AMQP.
func (p *Publisher) Close() error {
	return p.ch.Close()
}
