package rabbitmq

import (
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// Topology описывает exchange, основную очередь и очередь задержки повторов.
// Отклоненное сообщение уходит из основной очереди в очередь <Queue>.retry,
// лежит там RetryDelay и возвращается в основную очередь.
type Topology struct {
	Exchange   string
	Queue      string
	RoutingKey string
	RetryDelay time.Duration
}

// RetryQueue имя очереди задержки.
func (t Topology) RetryQueue() string {
	return t.Queue + ".retry"
}

func (t Topology) mainQueueArgs() amqp.Table {
	return amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": t.RetryQueue(),
	}
}

func (t Topology) retryQueueArgs() amqp.Table {
	return amqp.Table{
		"x-message-ttl":             t.RetryDelay.Milliseconds(),
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": t.Queue,
	}
}

// Setup объявляет exchange и обе очереди. Повторный вызов с теми же
// параметрами ничего не меняет.
func Setup(ch *amqp.Channel, t Topology) error {
	const op = "rabbitmq.Setup"

	err := ch.ExchangeDeclare(
		t.Exchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err = ch.QueueDeclare(t.Queue, true, false, false, false, t.mainQueueArgs()); err != nil {
		return fmt.Errorf("%s: failed to declare queue %s: %w", op, t.Queue, err)
	}
	if _, err = ch.QueueDeclare(t.RetryQueue(), true, false, false, false, t.retryQueueArgs()); err != nil {
		return fmt.Errorf("%s: failed to declare queue %s: %w", op, t.RetryQueue(), err)
	}

	if err = ch.QueueBind(t.Queue, t.RoutingKey, t.Exchange, false, nil); err != nil {
		return fmt.Errorf("%s: failed to bind queue %s with routing key %s: %w", op, t.Queue, t.RoutingKey, err)
	}
	return nil
}
