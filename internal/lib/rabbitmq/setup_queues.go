package rabbitmq

import "github.com/streadway/amqp"

const billingExchange = "billing.events"

// Routing keys событий биллинга.
const (
	RoutingKeyPaymentFailed        = "payment_failed"
	RoutingKeySubscriptionCanceled = "subscription_canceled"
)

// QueueConfig описывает очередь и её routing key.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetBillingQueues возвращает очереди уведомлений о событиях биллинга.
func GetBillingQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "billing.payment_failed", RoutingKey: RoutingKeyPaymentFailed},
		{QueueName: "billing.subscription_canceled", RoutingKey: RoutingKeySubscriptionCanceled},
	}
}

func setupQueues(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(billingExchange, "direct", true, false, false, false, nil); err != nil {
		return err
	}
	for _, q := range GetBillingQueues() {
		if _, err := ch.QueueDeclare(q.QueueName, true, false, false, false, nil); err != nil {
			return err
		}
		if err := ch.QueueBind(q.QueueName, q.RoutingKey, billingExchange, false, nil); err != nil {
			return err
		}
	}
	return nil
}
