// Package service publishes movie events to RabbitMQ.  Publishing never
// blocks a request: failures are logged and otherwise ignored.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/movie-manager/internal/queue"
)

// publishTimeout bounds one background publish.
const publishTimeout = 5 * time.Second

// Publisher sends events to a durable queue.  Each publish opens its own
// connection.
type Publisher struct {
	url   string
	queue string
	wg    sync.WaitGroup
}

func NewPublisher(url, queueName string) *Publisher {
	if queueName == "" {
		queueName = queue.DefaultQueue
	}
	return &Publisher{url: url, queue: queueName}
}

// Publish delivers ev as a persistent JSON message.
func (p *Publisher) Publish(ctx context.Context, ev queue.MovieEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	return ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.EventID,
		Timestamp:    ev.OccurredAt,
		Type:         string(ev.Type),
		Body:         body,
	})
}

// Emit publishes ev in the background.
func (p *Publisher) Emit(ev queue.MovieEvent) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := p.Publish(ctx, ev); err != nil {
			log.Warn().Err(err).Str("event_id", ev.EventID).Str("type", string(ev.Type)).Msg("event publish failed")
			return
		}
		log.Debug().Str("event_id", ev.EventID).Str("type", string(ev.Type)).Msg("event published")
	}()
}

// Wait blocks until background publishes finish.
func (p *Publisher) Wait() { p.wg.Wait() }
