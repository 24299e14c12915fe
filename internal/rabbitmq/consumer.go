package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/sideprojectsaturday/internal/lib/sl"
)

// Outcome результат обработки одного сообщения.
type Outcome int

const (
	// Ack сообщение обработано или его нельзя обработать никогда
	Ack Outcome = iota
	// Retry сообщение нужно доставить повторно после задержки
	Retry
)

func (o Outcome) String() string {
	if o == Retry {
		return "retry"
	}
	return "ack"
}

// Handler обрабатывает тело сообщения.
type Handler func(ctx context.Context, body []byte) Outcome

// ConsumerConfig параметры потребителя.
type ConsumerConfig struct {
	Queue          string
	Prefetch       int
	MaxConcurrency int
	// MaxDeliveries максимальное число попыток. 0 снимает ограничение.
	MaxDeliveries int
}

// Consume подписывается на очередь и обрабатывает сообщения, пока не отменен ctx
// или не закрыт канал. Перед возвратом дожидается обработки начатых сообщений.
func Consume(ctx context.Context, ch *amqp.Channel, cfg ConsumerConfig, log *slog.Logger, handler Handler) error {
	const op = "rabbitmq.Consume"

	if err := ch.Qos(max(cfg.Prefetch, 1), 0, false); err != nil {
		return fmt.Errorf("%s: failed to set QoS: %w", op, err)
	}

	deliveries, err := ch.Consume(
		cfg.Queue,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	process(ctx, deliveries, cfg, log.With(slog.String("op", op), slog.String("queue", cfg.Queue)), handler)
	return nil
}

func process(ctx context.Context, deliveries <-chan amqp.Delivery, cfg ConsumerConfig, log *slog.Logger, handler Handler) {
	sem := make(chan struct{}, max(cfg.MaxConcurrency, 1))
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				log.Warn("delivery channel closed")
				return
			}
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				// сообщение вернется в очередь при закрытии канала
				return
			}
			wg.Add(1)
			go func(d amqp.Delivery) {
				defer wg.Done()
				defer func() { <-sem }()
				settle(d, handler(ctx, d.Body), cfg.MaxDeliveries, log)
			}(d)
		}
	}
}

// settle подтверждает или отклоняет сообщение. Отклонение без requeue
// отправляет его в очередь задержки. Исчерпавшее попытки сообщение
// подтверждается и пропадает.
func settle(d amqp.Delivery, outcome Outcome, maxDeliveries int, log *slog.Logger) {
	if outcome == Retry {
		attempt := DeathCount(d.Headers) + 1
		if maxDeliveries > 0 && attempt >= int64(maxDeliveries) {
			log.Error("message dropped after max deliveries",
				slog.Int64("attempt", attempt),
				slog.String("message_id", d.MessageId),
				slog.String("body", string(d.Body)),
			)
			outcome = Ack
		} else {
			if err := d.Nack(false, false); err != nil {
				log.Error("failed to nack message", sl.Err(err))
			}
			return
		}
	}
	if err := d.Ack(false); err != nil {
		log.Error("failed to ack message", sl.Err(err))
	}
}

// DeathCount возвращает, сколько раз сообщение было отклонено потребителем.
// Считаются записи x-death с причиной rejected.
func DeathCount(headers amqp.Table) int64 {
	raw, ok := headers["x-death"]
	if !ok {
		return 0
	}
	deaths, ok := raw.([]interface{})
	if !ok {
		return 0
	}

	var total int64
	for _, entry := range deaths {
		table, ok := entry.(amqp.Table)
		if !ok {
			continue
		}
		if reason, _ := table["reason"].(string); reason != "rejected" {
			continue
		}
		switch c := table["count"].(type) {
		case int64:
			total += c
		case int32:
			total += int64(c)
		case int:
			total += int64(c)
		}
	}
	return total
}
