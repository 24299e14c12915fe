package rabbitmq

import (
	"context"
	"fmt"
	"sync"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/sideprojectsaturday/internal/models"
)

type channelPublisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher публикует события пользователей в exchange очереди синхронизации.
type Publisher struct {
	mu         sync.Mutex
	ch         channelPublisher
	exchange   string
	routingKey string
}

// NewPublisher создает публикатора поверх канала ch.
func NewPublisher(ch *amqp.Channel, exchange, routingKey string) *Publisher {
	return &Publisher{ch: ch, exchange: exchange, routingKey: routingKey}
}

// Publish кодирует событие и отправляет его как persistent-сообщение.
func (p *Publisher) Publish(ctx context.Context, ev models.UserEvent) error {
	const op = "rabbitmq.Publish"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	body, err := models.MarshalUserEvent(ev)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	// amqp.Channel не допускает одновременную публикацию из нескольких горутин
	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.Publish(
		p.exchange,
		p.routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         string(ev.EventType()),
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
